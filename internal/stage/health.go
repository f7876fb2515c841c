package stage

// Health summarizes the readiness of a workflow stage.
type Health struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}

// Degraded constructs a ready Health record that still carries a detail,
// for stages that run with placeholder output.
func Degraded(name, detail string) Health {
	return Health{Name: name, Ready: true, Detail: detail}
}
