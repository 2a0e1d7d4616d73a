package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/deck"
)

// errUsage marks command-line mistakes; main maps it to exit code 2.
var errUsage = errors.New("usage")

// cliFlags holds every command-line option.
type cliFlags struct {
	input   string
	out     string
	format  string
	config  string
	data    string
	debug   string
	workers int
	timeout time.Duration
	strict  bool
	verbose bool
	quiet   bool

	// set 记录显式给出的参数，只有这些会覆盖配置文件。
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	f := &cliFlags{set: map[string]bool{}}
	fs := flag.NewFlagSet("slidepress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usageLine())
		fs.PrintDefaults()
	}

	fs.StringVarP(&f.out, "out", "o", "", "输出路径（png 格式为文件名前缀）")
	fs.StringVarP(&f.format, "format", "f", "", "输出格式: pdf, html, png, browser-pdf")
	fs.StringVarP(&f.config, "config", "c", "", "YAML 配置文件")
	fs.StringVar(&f.data, "data", "", "绑定到幻灯片的 JSON/YAML 数据文件")
	fs.StringVar(&f.debug, "debug", "", "布局调试 JSON 输出路径")
	fs.IntVarP(&f.workers, "workers", "w", 0, "并行布局的 worker 数量，0 表示 GOMAXPROCS")
	fs.DurationVar(&f.timeout, "timeout", 0, "导出超时，例如 30s")
	fs.BoolVar(&f.strict, "strict", false, "存在越界或未知版式时失败")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "输出调试日志")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "只输出错误")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	switch fs.NArg() {
	case 0:
		return nil, fmt.Errorf("%w: missing deck file", errUsage)
	case 1:
		f.input = fs.Arg(0)
	default:
		return nil, fmt.Errorf("%w: expected one deck file, got %d", errUsage, fs.NArg())
	}
	if f.verbose && f.quiet {
		return nil, fmt.Errorf("%w: --verbose and --quiet are mutually exclusive", errUsage)
	}
	if f.workers < 0 {
		return nil, fmt.Errorf("%w: --workers must not be negative", errUsage)
	}
	if f.timeout < 0 {
		return nil, fmt.Errorf("%w: --timeout must not be negative", errUsage)
	}
	return f, nil
}

// usageLine 列出 deck.DetectFormat 实际接受的扩展名。
func usageLine() string {
	names := make([]string, 0, len(deck.Extensions))
	for _, ext := range deck.Extensions {
		names = append(names, "deck"+ext)
	}
	return "用法: slidepress [flags] <" + strings.Join(names, "|") + ">"
}

// applyTo 将显式给出的参数写入配置，优先级高于文件与环境变量。
func (f *cliFlags) applyTo(cfg *config.Config) error {
	if f.set["format"] {
		cfg.Output.Format = f.format
	}
	if f.set["workers"] {
		cfg.Export.Workers = f.workers
	}
	if f.set["timeout"] {
		cfg.Export.Timeout = f.timeout.String()
	}
	if f.set["strict"] {
		cfg.Export.Strict = f.strict
	}
	return cfg.Validate()
}
