package extraction

import "strings"

const promptTemplate = `You are a helpful assistant that extracts information from voice notes and meeting transcripts.

Analyze this transcript and extract:
1. A concise summary (2-3 sentences)
2. Action items as a list
3. A short descriptive title

Transcript:
{{transcript}}

Respond ONLY with valid JSON in this exact format:
{
  "summary": "your summary here",
  "action_items": ["first action", "second action"],
  "title": "your title here"
}

Do not include any text before or after the JSON.`

// BuildPrompt embeds transcript into the extraction instructions.
func BuildPrompt(transcript string) string {
	return strings.Replace(promptTemplate, "{{transcript}}", transcript, 1)
}
