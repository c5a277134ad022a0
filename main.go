package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/mathcell/binding"
	"github.com/ByLCY/mathcell/config"
	"github.com/ByLCY/mathcell/dsl"
	"github.com/ByLCY/mathcell/layout"
	"github.com/ByLCY/mathcell/markup"
	canvasrenderer "github.com/ByLCY/mathcell/renderer/canvas"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app 保存根命令加载的配置与日志，供子命令共享。
type app struct {
	configPath string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:          "mathcell",
		Short:        "排版并导出数学表达式单元",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfiguration(a.configPath)
			if err != nil {
				return err
			}
			log, err := cfg.Logging.Prepare(a.verbose)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML 配置文件路径")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newConfigCmd(a))
	return root
}

type renderOpts struct {
	output    string
	format    string
	width     string
	debugPath string
	dataPath  string
}

func newRenderCmd(a *app) *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "排版并输出 PDF、SVG 或 PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(args[0], &opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "输出路径（默认与输入同名）")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "输出格式：pdf、svg、png（默认取配置）")
	cmd.Flags().StringVarP(&opts.width, "width", "w", "", "目标行宽，例如 120mm（默认取配置）")
	cmd.Flags().StringVar(&opts.debugPath, "debug", "", "排版调试 JSON 输出路径")
	cmd.Flags().StringVar(&opts.dataPath, "data", "", "绑定到 ${...} 占位符的 YAML/JSON 数据文件")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var format, output, dataPath string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "导出为 text、tex、mathml、omml、matlab 或 xml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			w := cmd.OutOrStdout()
			if output != "" {
				var f *os.File
				if f, err = os.Create(output); err != nil {
					return fmt.Errorf("创建输出文件失败: %w", err)
				}
				defer multierr.AppendInvoke(&err, multierr.Close(f))
				w = f
			}
			return a.export(args[0], format, dataPath, w)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "导出格式")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出路径（默认标准输出）")
	cmd.Flags().StringVar(&dataPath, "data", "", "绑定到 ${...} 占位符的 YAML/JSON 数据文件")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "查看配置",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "输出当前生效的配置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Dump(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "default",
		Short: "输出内置的默认配置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(config.Default())
			return err
		},
	})
	return cmd
}

// render 串联解析、数据绑定、排版与绘制。
func (a *app) render(inputPath string, opts *renderOpts) error {
	lc, err := a.cfg.Layout.Engine()
	if err != nil {
		return err
	}
	if opts.width != "" {
		l, err := layout.ParseLength(opts.width)
		if err != nil || l.ToMM() <= 0 {
			return fmt.Errorf("无效的行宽 %q", opts.width)
		}
		lc.LineWidth = l.ToMM()
	}
	format := a.cfg.Render.Format
	if opts.format != "" {
		format = opts.format
	}
	out, err := canvasrenderer.ParseOutput(format)
	if err != nil {
		return err
	}
	margin, err := a.cfg.Render.MarginMM()
	if err != nil {
		return err
	}

	r := canvasrenderer.New(lc, canvasrenderer.Options{
		Output:  out,
		Margin:  margin,
		DPI:     a.cfg.Render.DPI,
		Fonts:   a.cfg.Render.StyleFonts(),
		BaseDir: filepath.Dir(inputPath),
	}, a.log)

	head, err := a.load(inputPath, r.Env(), opts.dataPath)
	if err != nil {
		return err
	}
	data, err := r.Render(head)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}

	if opts.debugPath != "" {
		var baseline float64
		if lines := layout.Lines(head); len(lines) > 0 {
			baseline = lines[0].Center
		}
		dump := layout.Snapshot(head, layout.Point{X: margin, Y: margin + baseline})
		if err := writeDebug(dump, opts.debugPath); err != nil {
			return err
		}
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "." + string(out)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	a.log.Info("Rendered", zap.String("input", inputPath), zap.String("output", outputPath))
	return nil
}

func (a *app) export(inputPath, format, dataPath string, w io.Writer) error {
	f, err := layout.ParseFormat(format)
	if err != nil {
		return err
	}
	lc, err := a.cfg.Layout.Engine()
	if err != nil {
		return err
	}
	head, err := a.load(inputPath, layout.NewEnv(nil, lc, a.log), dataPath)
	if err != nil {
		return err
	}
	text, err := layout.Export(head, f)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, text+"\n"); err != nil {
		return fmt.Errorf("写入导出结果失败: %w", err)
	}
	return nil
}

// load 按扩展名选择读取方式：.xml 为持久化格式，其余按线性记法解析。
// XML 中无法识别的片段只记录警告，已解析的部分照常使用。
func (a *app) load(path string, env *layout.Env, dataPath string) (layout.Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开输入文件 %s: %w", path, err)
	}
	defer file.Close()

	var head layout.Node
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		head, err = markup.Parse(file, env, a.log)
		if err != nil && head != nil {
			a.log.Warn("Document has unparsable fragments", zap.Int("count", len(multierr.Errors(err))))
			err = nil
		}
	} else {
		var doc *dsl.Document
		if doc, err = dsl.Parse(file); err == nil {
			head = dsl.Build(doc, env)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	if head == nil {
		return nil, errors.New("输入中没有任何内容")
	}

	if dataPath != "" {
		data, err := binding.LoadData(dataPath)
		if err != nil {
			return nil, err
		}
		n := binding.Apply(head, data)
		a.log.Debug("Bound data", zap.String("data", dataPath), zap.Int("changed", n))
	}
	return head, nil
}

func writeDebug(dump *layout.DebugDump, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(dump, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
