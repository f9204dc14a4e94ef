package procreader

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"

	"github.com/classifierd/classifierd/pkg/tokennorm"
)

// DefaultJournalLines is the default -n value passed to journalctl
// (spec.md §4.1 logs row, §6 N default 20).
const DefaultJournalLines = 20

var journalLinePattern = regexp.MustCompile(`.*? (\S+)\[(\d+)\]: (.*)`)

// JournalTimeout bounds how long the journalctl subprocess may run before
// it is killed; spec.md §4.1 says the journal read "inherits the journal
// tool's own timeout behavior" but a daemon worker still needs a backstop
// so one stuck subprocess can't wedge a worker forever.
var JournalTimeout = 5 * time.Second

// Journal invokes `journalctl --no-pager -n <numLines> _COMM=<comm>` and
// returns the process-name/message pairs extracted by the
// `.*? (\S+)\[(\d+)\]: (.*)` pattern (spec.md §4.1, §6). The subprocess's
// exit code is ignored beyond logging, matching spec.md's treatment of the
// journal call as best-effort.
func (r *Reader) Journal(pid uint32, comm string, numLines int) []string {
	if numLines <= 0 {
		numLines = DefaultJournalLines
	}

	ctx, cancel := context.WithTimeout(context.Background(), JournalTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "journalctl", "--no-pager", "-n", strconv.Itoa(numLines), "_COMM="+comm)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		logger.L().Debug("journalctl invocation did not complete cleanly",
			helpers.Int("pid", int(pid)), helpers.String("comm", comm), helpers.Error(err))
	}

	var messages []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		m := journalLinePattern.FindStringSubmatch(line)
		if len(m) != 4 {
			continue
		}
		messages = append(messages, m[1]+": "+m[3])
	}
	return messages
}

// LogTokens tokenizes the extracted journal messages per spec.md §4.1 logs
// row: strip bracketed level tags, split on
// "=!'&/.,:- ", remove punctuation, drop single-char and all-digit tokens.
func LogTokens(messages []string) []string {
	var out []string
	for _, msg := range messages {
		cleaned := tokennorm.StripBracketedLevelTags(msg)
		for _, tok := range splitAny(cleaned, `=!'&/.,:- `) {
			tok = tokennorm.RemovePunctuation(tok)
			if tok == "" || len(tok) <= 1 {
				continue
			}
			if tokennorm.IsDigitsOnly(tok) {
				continue
			}
			out = append(out, tok)
		}
	}
	return out
}
