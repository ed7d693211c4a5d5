package logger

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Supervise runs executable with arg and relays its stderr. JSON lines are
// passed through unchanged, anything else is wrapped into a log event. A Go
// panic dump is collected and logged as one fatal event once the child exits.
// The child exit code is returned.
func Supervise(ctx context.Context, executable string, arg ...string) (int, error) {
	supervisorLogger := NewLogger("Supervisor")

	cmd := exec.CommandContext(ctx, executable, arg...)
	cmd.Stdout = os.Stdout
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 1, err
	}
	if err = cmd.Start(); err != nil {
		supervisorLogger.Error().Err(err).Str("executable", executable).Msg("Could not launch process")
		return 1, err
	}

	relay := newRelay(output, supervisorLogger)
	if err := relay.copy(stderr); err != nil {
		supervisorLogger.Error().Err(err).Msg("Error scanning child process stderr")
	}

	exitCode := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return 1, err
		}
		exitCode = exitErr.ExitCode()
	}
	if relay.panicked() {
		supervisorLogger.WithLevel(zerolog.FatalLevel).
			Str("stack_trace", relay.panicDump()).
			Msgf("Process panicked and exited with code: %d", exitCode)
	} else {
		supervisorLogger.Info().Int("exit_code", exitCode).Msg("Process exited")
	}
	return exitCode, nil
}

type relay struct {
	out  io.Writer
	log  zerolog.Logger
	dump *strings.Builder
}

func newRelay(out io.Writer, log zerolog.Logger) *relay {
	return &relay{out: out, log: log}
}

func (r *relay) copy(src io.Reader) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		r.line(scanner.Bytes())
	}
	return scanner.Err()
}

func (r *relay) line(b []byte) {
	if r.dump == nil && (strings.HasPrefix(string(b), "panic:") || strings.HasPrefix(string(b), "fatal error:")) {
		r.dump = &strings.Builder{}
	}
	switch {
	case r.dump != nil:
		r.dump.Write(b)
		r.dump.WriteByte('\n')
	case len(b) == 0:
	case isJSON(b):
		_, _ = fmt.Fprintf(r.out, "%s\n", b)
	default:
		r.log.Warn().Str("line", string(b)).Msg("Got log line that is not JSON formatted")
	}
}

func (r *relay) panicked() bool {
	return r.dump != nil
}

func (r *relay) panicDump() string {
	if r.dump == nil {
		return ""
	}
	return r.dump.String()
}

func isJSON(b []byte) bool {
	var js json.RawMessage
	return json.Unmarshal(b, &js) == nil && js != nil
}
