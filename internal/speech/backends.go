package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Speaking rate relative to each backend's default, slower for clarity.
const rateFactor = 0.8

// DefaultBackends returns the synthesisers tried at startup.
func DefaultBackends() []Backend {
	return []Backend{NewSay(), NewEspeak()}
}

// runFunc runs a command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, err
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// Say drives the macOS say command.
type Say struct {
	run runFunc
}

func NewSay() *Say { return &Say{run: execRun} }

func (s *Say) Name() string { return "say" }

func (s *Say) Voices(ctx context.Context) ([]Voice, error) {
	out, err := s.run(ctx, "say", "-v", "?")
	if err != nil {
		return nil, err
	}
	return parseSayVoices(out), nil
}

// say speaks about 175 words per minute by default.
var sayRate = strconv.Itoa(int(175 * rateFactor))

func (s *Say) Speak(ctx context.Context, v Voice, text string) error {
	args := []string{"-r", sayRate}
	if v.ID != "" {
		args = append(args, "-v", v.ID)
	}
	_, err := s.run(ctx, "say", append(args, text)...)
	return err
}

// Lines look like "Ting-Ting           zh_CN    # 你好，我叫婷婷。".
var sayLine = regexp.MustCompile(`^(.+?)\s+([a-z]{2,3}(?:[_-][A-Za-z0-9]+)*)\s+#`)

func parseSayVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		m := sayLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		voices = append(voices, Voice{
			ID:      name,
			Name:    name,
			Lang:    strings.ReplaceAll(m[2], "_", "-"),
			Backend: "say",
		})
	}
	return voices
}

// Espeak drives espeak-ng.
type Espeak struct {
	run runFunc
}

func NewEspeak() *Espeak { return &Espeak{run: execRun} }

func (e *Espeak) Name() string { return "espeak-ng" }

func (e *Espeak) Voices(ctx context.Context) ([]Voice, error) {
	out, err := e.run(ctx, "espeak-ng", "--voices=zh")
	if err != nil {
		return nil, err
	}
	return parseEspeakVoices(out), nil
}

// espeak-ng speaks 175 words per minute by default.
var espeakRate = strconv.Itoa(int(175 * rateFactor))

func (e *Espeak) Speak(ctx context.Context, v Voice, text string) error {
	id := v.ID
	if id == "" {
		id = "cmn"
	}
	_, err := e.run(ctx, "espeak-ng", "-v", id, "-s", espeakRate, text)
	return err
}

// espeak uses ISO 639-3 codes for Chinese; map them onto zh tags so the
// Mandarin filter treats them like every other backend.
var espeakLangs = map[string]string{
	"cmn":             "zh-CN",
	"cmn-latn-pinyin": "zh-CN-pinyin",
	"yue":             "zh-yue",
	"hak":             "zh-hak",
}

// Table columns: Pty Language Age/Gender VoiceName File Other Languages.
func parseEspeakVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 5 || f[0] == "Pty" {
			continue
		}
		code := f[1]
		lang := code
		if mapped, ok := espeakLangs[code]; ok {
			lang = mapped
		}
		voices = append(voices, Voice{
			ID:      code,
			Name:    strings.ReplaceAll(f[3], "_", " "),
			Lang:    lang,
			Backend: "espeak-ng",
		})
	}
	return voices
}
