package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/facecam/internal/config"
	"github.com/andresmejia3/facecam/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Options holds the flag values shared by every command. Only flags the user
// actually set override the loaded configuration.
type Options struct {
	ConfigPath string
	FacesDir   string
	ModelsDir  string
	Camera     int
	Backend    string
	Threshold  float64
	Downscale  int
	Every      int
	Window     string
}

var (
	opts Options
	// Cfg is the resolved configuration, populated in PersistentPreRunE.
	Cfg config.Config
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "facecam",
	Short:   "Live webcam face recognition against a folder of reference photos",
	Version: Version, // This enables the --version flag

	// Execute prints whatever was not already shown as a boxed report
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env file is optional, don't fail if not found
		_ = godotenv.Load()

		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			utils.Die("Failed to load configuration", err)
		}
		applyFlags(cmd, &cfg)

		if err := cfg.Validate(); err != nil {
			utils.Die("Invalid configuration", err)
		}
		Cfg = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runWatch(cmd.Context(), Cfg)
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !utils.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	def := config.Default()
	f := rootCmd.PersistentFlags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML config file (default: ./"+config.DefaultFile+" if present)")
	f.StringVarP(&opts.FacesDir, "faces", "f", "", "Directory of reference images, one face each (default: "+def.FacesDir+")")
	f.StringVarP(&opts.ModelsDir, "models", "m", "", "Directory holding the dlib model files (default: "+def.ModelsDir+")")
	f.IntVar(&opts.Camera, "camera", def.Camera, "Camera device index")
	f.StringVar(&opts.Backend, "backend", "", "Capture backend: any, dshow, v4l2, avfoundation, msmf (default: per platform)")
	f.Float64VarP(&opts.Threshold, "threshold", "t", def.Threshold, "Face matching threshold (lower is stricter)")
	f.IntVar(&opts.Downscale, "downscale", def.Downscale, "Shrink frames by this factor before detection")
	f.IntVarP(&opts.Every, "every", "n", def.ProcessEvery, "Run detection on every Nth frame")
	f.StringVar(&opts.Window, "window", "", "Window title (default: "+def.WindowTitle+")")
}

// applyFlags copies explicitly set flags over the file/env configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("faces") {
		cfg.FacesDir = opts.FacesDir
	}
	if flags.Changed("models") {
		cfg.ModelsDir = opts.ModelsDir
	}
	if flags.Changed("camera") {
		cfg.Camera = opts.Camera
	}
	if flags.Changed("backend") {
		cfg.Backend = opts.Backend
	}
	if flags.Changed("threshold") {
		cfg.Threshold = opts.Threshold
	}
	if flags.Changed("downscale") {
		cfg.Downscale = opts.Downscale
	}
	if flags.Changed("every") {
		cfg.ProcessEvery = opts.Every
	}
	if flags.Changed("window") {
		cfg.WindowTitle = opts.Window
	}
}
