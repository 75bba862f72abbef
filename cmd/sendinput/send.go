package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/breeze-rmm/sendinput/internal/pipeserver"
)

var (
	sendPipe   bool
	sendStrict bool
)

var sendCmd = &cobra.Command{
	Use:   "send [json...]",
	Short: "Inject input events described as JSON",
	Long: `Inject one input event. Arguments are joined with spaces, the same way
rundll32 hands the command line to the DLL export. With no arguments or
"-", one payload per line is read from stdin.

Invalid payloads are ignored silently unless --strict is given.`,
	Example: `  sendinput send '{"type":1,"ki":{"wVk":65}}'
  sendinput send --pipe < events.jsonl`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().BoolVar(&sendPipe, "pipe", false, "forward payloads to a running 'sendinput serve' instead of injecting locally")
	sendCmd.Flags().BoolVar(&sendStrict, "strict", false, "fail on the first payload that cannot be translated or injected")
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	payloads, err := collectPayloads(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if sendPipe {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := pipeserver.Send(ctx, cfg.PipePath, payloads...); err != nil {
			return err
		}
		log.Debug("payloads forwarded", "count", len(payloads), "pipe", cfg.PipePath)
		return nil
	}

	tr := newTranslator(cfg)
	for i, p := range payloads {
		if !sendStrict {
			tr.Dispatch(string(p))
			continue
		}
		if err := tr.Send(p); err != nil {
			return fmt.Errorf("payload %d: %w", i+1, err)
		}
	}
	return nil
}

// collectPayloads returns the joined arguments as a single payload, or one
// payload per non-blank stdin line.
func collectPayloads(args []string, stdin io.Reader) ([][]byte, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return [][]byte{[]byte(strings.Join(args, " "))}, nil
	}

	var payloads [][]byte
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 4096), pipeserver.MaxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		payloads = append(payloads, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return payloads, nil
}
