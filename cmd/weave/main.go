package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"weave/internal/classify"
	"weave/internal/config"
	"weave/internal/crawler"
	"weave/internal/gitchange"
	"weave/internal/render"
	"weave/internal/server"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "weave",
		Short: "Serve and render browser-editable literate-programming documents",
	}
	cfgPath string

	servePort int

	renderRecursive bool
	renderSince     string
	renderOutput    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "weave.yaml", "Path to the configuration file")

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	renderCmd.Flags().BoolVarP(&renderRecursive, "recursive", "r", false, "Render every classifiable file under a directory")
	renderCmd.Flags().StringVar(&renderSince, "since", "", "With -r, render only files changed since a git ref")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Destination path (single-file mode only; default <source>.html)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(languagesCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Serve a source tree with on-demand editable documents",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if len(args) > 0 {
			cfg.Server.Root = args[0]
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		srv := server.New(cfg, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("🌐 Serving %s at http://%s/\n", cfg.Server.Root, srv.Addr())
		if err := srv.Run(ctx); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [path]",
	Short: "Render a source file (or tree, with -r) to editable HTML on disk",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		reg := classify.NewRegistry(cfg.Languages)
		asm := render.NewAssembler(cfg.Editor)

		if !renderRecursive {
			if len(args) != 1 {
				log.Fatalf("render needs a source file (or use -r for a directory)")
			}
			dst := renderOutput
			if dst == "" {
				dst = args[0] + ".html"
			}
			if err := renderFile(reg, asm, args[0], dst); err != nil {
				log.Fatalf("Render failed: %v", err)
			}
			fmt.Printf("✅ %s -> %s\n", args[0], dst)
			return
		}

		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		rendered := 0
		renderOne := func(path string) error {
			if err := renderFile(reg, asm, path, path+".html"); err != nil {
				log.Printf("⚠️ Skipping %s: %v", path, err)
				return nil
			}
			rendered++
			return nil
		}

		if renderSince != "" {
			changed, err := gitchange.ChangedFiles(renderSince)
			if err != nil {
				log.Fatalf("Failed to get git changes: %v", err)
			}
			for _, path := range changed {
				if !reg.Recognized(filepath.Ext(path)) || !strings.HasPrefix(path, prefixFor(root)) {
					continue
				}
				if _, err := os.Stat(path); err != nil {
					continue
				}
				if err := renderOne(path); err != nil {
					log.Fatalf("Render failed: %v", err)
				}
			}
		} else {
			if err := crawler.New(reg).ScanSources(root, renderOne); err != nil {
				log.Fatalf("Render failed: %v", err)
			}
		}
		fmt.Printf("🎉 Rendered %d file(s).\n", rendered)
	},
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List recognized file extensions and their languages",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		reg := classify.NewRegistry(cfg.Languages)
		for _, ext := range reg.Extensions() {
			name, _ := reg.LanguageName(ext)
			fmt.Printf("%-8s %s\n", ext, name)
		}
	},
}

func renderFile(reg *classify.Registry, asm *render.Assembler, src, dst string) error {
	cls, err := reg.ForExtension(filepath.Ext(src))
	if err != nil {
		return err
	}
	code, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	res, err := cls.Classify(code)
	if err != nil {
		return err
	}
	return asm.PageFile(res, src, dst)
}

// prefixFor normalizes a root directory for prefix-matching git paths.
func prefixFor(root string) string {
	if root == "." {
		return ""
	}
	return strings.TrimSuffix(filepath.ToSlash(root), "/") + "/"
}
