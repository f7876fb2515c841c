package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"notehub/internal/api"
	"notehub/internal/noteaccess"
	"notehub/internal/notes"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a voice recording or text note",
	}
	addCmd.AddCommand(newAddAudioCommand(ctx))
	addCmd.AddCommand(newAddTextCommand(ctx))
	return addCmd
}

func newAddAudioCommand(ctx *commandContext) *cobra.Command {
	var title string
	var tags string

	cmd := &cobra.Command{
		Use:   "audio <path>",
		Short: "Queue an audio recording for transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}

			return ctx.withAccess(cmd, func(access noteaccess.Access) error {
				file, err := os.Open(absPath)
				if err != nil {
					return fmt.Errorf("open recording: %w", err)
				}
				defer file.Close()

				note, err := access.AddAudio(commandCtx(cmd), noteaccess.AudioFile{
					Filename: filepath.Base(absPath),
					Body:     file,
					Title:    title,
					Tags:     notes.SplitTags(tags),
				})
				if err != nil {
					return fmt.Errorf("add recording: %w", err)
				}
				reportAdded(cmd.OutOrStdout(), note, access.Live())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Note title (defaults to a timestamped name)")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	return cmd
}

func newAddTextCommand(ctx *commandContext) *cobra.Command {
	var title string
	var tags string
	var fromFile string

	cmd := &cobra.Command{
		Use:   "text [content]",
		Short: "Add a text note; reads stdin when no content or --file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readTextContent(cmd, args, fromFile)
			if err != nil {
				return err
			}
			if strings.TrimSpace(content) == "" {
				return errors.New("text note content is empty")
			}
			return ctx.withAccess(cmd, func(access noteaccess.Access) error {
				note, err := access.AddText(commandCtx(cmd), api.CreateTextRequest{
					Title:   title,
					Content: content,
					Tags:    notes.SplitTags(tags),
				})
				if err != nil {
					return fmt.Errorf("add text note: %w", err)
				}
				reportAdded(cmd.OutOrStdout(), note, access.Live())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Note title (defaults to a timestamped name)")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "Read content from a file")
	return cmd
}

func readTextContent(cmd *cobra.Command, args []string, fromFile string) (string, error) {
	switch {
	case len(args) == 1 && strings.TrimSpace(fromFile) != "":
		return "", errors.New("pass content or --file, not both")
	case len(args) == 1:
		return args[0], nil
	case strings.TrimSpace(fromFile) != "":
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", fromFile, err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
}

func reportAdded(out io.Writer, note *api.Note, live bool) {
	if note == nil {
		fmt.Fprintln(out, "Note added")
		return
	}
	fmt.Fprintf(out, "Added note %s (%s, status %s)\n", note.ID, note.Title, note.Status)
	if !live {
		fmt.Fprintln(out, "Daemon is not running; the note will be processed when it starts")
	}
}
