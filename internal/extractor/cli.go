package extractor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"videocrawl/internal/model"

	"go.uber.org/zap"
)

// CLIFormatID is reported for downloads done by the yt-dlp binary, which
// does not tell us which format it picked.
const CLIFormatID = "yt-dlp_cli"

var (
	progressLineRE = regexp.MustCompile(`\[download\]\s+([\d.]+)%\s+of\s+~?\s*([\d.]+)\s*([KMGT]?i?B)`)
	resolutionRE   = regexp.MustCompile(`(\d+x\d+|(\d+)p)`)
)

var unitBytes = map[string]float64{
	"B":   1,
	"KB":  1e3,
	"MB":  1e6,
	"GB":  1e9,
	"TB":  1e12,
	"KiB": 1 << 10,
	"MiB": 1 << 20,
	"GiB": 1 << 30,
	"TiB": 1 << 40,
}

// CLIExtractor runs an external yt-dlp binary
type CLIExtractor struct {
	Path string
	Log  *zap.Logger
}

// NewCLIExtractor creates an extractor for the binary at path
func NewCLIExtractor(path string, log *zap.Logger) *CLIExtractor {
	if path == "" {
		path = "yt-dlp"
	}
	return &CLIExtractor{Path: path, Log: log}
}

func (e *CLIExtractor) Name() string { return "yt-dlp-cli" }

// Available reports whether "<path> --version" runs successfully.
func (e *CLIExtractor) Available(ctx context.Context) bool {
	return exec.CommandContext(ctx, e.Path, "--version").Run() == nil
}

// Args returns the command line arguments for req.
func (e *CLIExtractor) Args(req Request) []string {
	return []string{
		"-f", req.Selector,
		"-o", req.OutputPath,
		"--no-warnings",
		"--newline",
		"--progress",
		req.URL,
	}
}

func (e *CLIExtractor) Extract(ctx context.Context, req Request) (*model.DownloadedFormat, error) {
	args := e.Args(req)
	if e.Log != nil {
		e.Log.Info("Running yt-dlp", zap.String("path", e.Path), zap.Strings("args", args))
	}

	cmd := exec.CommandContext(ctx, e.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", e.Path, err)
	}

	progress := Monotonic(req.Progress)
	defer progress.Finish()

	resolution := e.consume(stdout, progress)
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if resolution == "" {
		resolution = scanResolution(&stderr)
	}
	if resolution == "" {
		resolution = "unknown"
	}

	return &model.DownloadedFormat{
		FormatID:   CLIFormatID,
		Resolution: resolution,
		Downloaded: true,
	}, nil
}

// consume reads yt-dlp's stdout line by line, forwarding progress and
// returning the first resolution mentioned.
func (e *CLIExtractor) consume(r io.Reader, l Listener) string {
	var resolution string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if done, total, ok := ParseProgress(line); ok {
			l.Progress(done, total)
			continue
		}
		if resolution == "" {
			resolution = lineResolution(line)
		}
	}
	return resolution
}

func scanResolution(r io.Reader) string {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if res := lineResolution(sc.Text()); res != "" {
			return res
		}
	}
	return ""
}

// lineResolution finds "1280x720" or "720p" in lines that look like they
// describe a format.
func lineResolution(line string) string {
	if !strings.Contains(line, "x") {
		return ""
	}
	if !strings.Contains(line, "p") && !strings.Contains(strings.ToLower(line), "resolution") {
		return ""
	}
	return resolutionRE.FindString(line)
}

// ParseProgress reads a "[download]  42.0% of 10.00MiB" line into byte counts.
func ParseProgress(line string) (done, total int64, ok bool) {
	m := progressLineRE.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, false
	}
	size, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, false
	}
	unit, known := unitBytes[m[3]]
	if !known {
		return 0, 0, false
	}
	total = int64(size * unit)
	done = int64(float64(total) * pct / 100)
	return done, total, true
}
