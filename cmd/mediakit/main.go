package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"mediakit/internal/app"
	"mediakit/internal/config"
	"mediakit/internal/encryption"
	"mediakit/internal/media"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	verbose bool
	timeout time.Duration
)

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Record", "Upload").
func newApp(ctx context.Context, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(ctx, cfg, operation, app.StdIO(verbose))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// commandContext is cancelled on SIGINT or SIGTERM, or once --timeout elapses.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func printFile(f *media.MediaFile) {
	uploaded := ""
	if f.IsUploaded {
		uploaded = "  " + f.RemoteURL
	}
	fmt.Printf("%s  %-8s  %s  %8d  %s%s\n",
		f.ID,
		f.Type,
		f.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		f.Size,
		f.Name,
		uploaded,
	)
}

var rootCmd = &cobra.Command{
	Use:          "mediakit",
	Short:        "Capture, store and transfer media files",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env in the working directory, then one next to the data dir.
		paths := []string{".env"}
		if home := os.Getenv("MEDIAKIT_HOME"); home != "" {
			paths = append(paths, filepath.Join(home, ".env"))
		}
		return app.LoadEnv(paths...)
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		deviceID := uuid.New().String()
		cfg := config.NewConfig(deviceID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Device ID: %s\n", deviceID)
		fmt.Printf("Base Dir:  %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Device ID:    %s\n", cfg.DeviceID)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Document Dir: %s\n", cfg.DocumentDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Store:        %s\n", cfg.Store.Type)
		fmt.Printf("Registry:     %s\n", cfg.Registry.Type)
		fmt.Printf("Library:      %s (%s)\n", cfg.Library.Root, cfg.Library.Platform)
		fmt.Printf("Encryption:   %s\n", cfg.Encryption.Type)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the upload encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		sealer := encryption.NewAgeSealer(cfg.Encryption, nil)
		if sealer.IsConfigured() {
			return fmt.Errorf("keys already exist at %s", cfg.Encryption.PublicKeyPath)
		}

		pass, err := encryption.ReadPassphrase("New passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := encryption.ReadPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}
		if pass == "" {
			return fmt.Errorf("passphrase must not be empty")
		}

		if err := sealer.Setup(pass); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		if cfg.Encryption.Type != "age" {
			fmt.Println(`Set type = "age" under [encryption] to seal uploads.`)
		}
		return nil
	},
}

// record command
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a voice note",
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetDuration("duration")
		background, _ := cmd.Flags().GetDuration("background-after")
		upload, _ := cmd.Flags().GetBool("upload")
		export, _ := cmd.Flags().GetBool("export")

		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := newApp(ctx, "Record")
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Println("Recording... press Ctrl+C to stop.")
		res, err := a.Record(ctx, app.RecordOptions{
			Duration:        duration,
			BackgroundAfter: background,
			Upload:          upload,
			Export:          export,
		})
		if res != nil && res.File != nil {
			fmt.Printf("Saved %s (%d ms) to %s\n", res.File.ID, res.File.DurationMillis(), res.File.LocalPath)
			if res.RemoteURL != "" {
				fmt.Printf("Uploaded to %s\n", res.RemoteURL)
			}
		}
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}
		if export {
			fmt.Println("Exported to media library")
		}
		return nil
	},
}

// play command
var playCmd = &cobra.Command{
	Use:   "play PATH",
	Short: "Play an audio file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := newApp(ctx, "Play")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Play(ctx, args[0]); err != nil && ctx.Err() == nil {
			return fmt.Errorf("play: %w", err)
		}
		return nil
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Copy a file into local media storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mediaType, _ := cmd.Flags().GetString("type")

		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := newApp(ctx, "Import")
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := a.Import(ctx, args[0], mediaType)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		printFile(f)
		return nil
	},
}

// upload command
var uploadCmd = &cobra.Command{
	Use:   "upload ID",
	Short: "Upload a media file to the remote store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := newApp(ctx, "Upload")
		if err != nil {
			return err
		}
		defer a.Close()

		url, err := a.Upload(ctx, args[0])
		if url != "" {
			fmt.Println(url)
		}
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		return nil
	},
}

// uploads command
var uploadsCmd = &cobra.Command{
	Use:   "uploads ID",
	Short: "Show every upload of a media file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := newApp(ctx, "Uploads")
		if err != nil {
			return err
		}
		defer a.Close()

		uploads, err := a.Uploads(ctx, args[0])
		if err != nil {
			return err
		}
		if len(uploads) == 0 {
			fmt.Println("Never uploaded.")
			return nil
		}
		for _, u := range uploads {
			fmt.Printf("%s  %s\n", u.UploadedAt.Local().Format("2006-01-02 15:04:05"), u.RemoteURL)
		}
		return nil
	},
}

// download command
var downloadCmd = &cobra.Command{
	Use:   "download URL",
	Short: "Download a remote object into local media storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mediaType, _ := cmd.Flags().GetString("type")

		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := newApp(ctx, "Download")
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := a.Download(ctx, args[0], mediaType)
		if err != nil {
			return fmt.Errorf("download: %w", err)
		}
		printFile(f)
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Save a media file to the device media library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := newApp(ctx, "Export")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Export(ctx, args[0]); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Printf("Exported %s\n", args[0])
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered media files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := newApp(ctx, "List")
		if err != nil {
			return err
		}
		defer a.Close()

		files, err := a.List(ctx)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No media files.")
			return nil
		}
		for _, f := range files {
			printFile(f)
		}
		return nil
	},
}

// pick-image command
var pickImageCmd = &cobra.Command{
	Use:   "pick-image",
	Short: "Pick an image from the device",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := newApp(ctx, "PickImage")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.PickImage(ctx)
		if err != nil {
			return err
		}
		switch res.Status {
		case media.PickSelected:
			printFile(res.File)
		default:
			fmt.Printf("Image picking %s\n", res.Status)
		}
		return nil
	},
}

// store command
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the remote store",
}

var storeCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the remote store is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := newApp(ctx, "CheckStore")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.CheckStore(ctx); err != nil {
			return err
		}
		fmt.Println("Store OK")
		return nil
	},
}

// registry command
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the local media registry",
}

var registryCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the registry schema is current",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := newApp(ctx, "CheckRegistry")
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.CheckRegistry()
		if err != nil {
			return err
		}
		if st == nil {
			fmt.Println("Registry OK (no schema)")
			return nil
		}
		fmt.Printf("Registry OK (schema version %d)\n", st.Version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Abort the command after this long (0 means no limit)")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// store subcommands
	storeCmd.AddCommand(storeCheckCmd)

	// registry subcommands
	registryCmd.AddCommand(registryCheckCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().DurationP("duration", "d", time.Minute, "Maximum recording length")
	recordCmd.Flags().Duration("background-after", 0, "Move the app to the background after this long (capture stops there)")
	recordCmd.Flags().Bool("upload", false, "Upload the recording when done")
	recordCmd.Flags().Bool("export", false, "Save the recording to the media library")
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringP("type", "t", "", "Media type: image, video, audio or document")
	importCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(uploadsCmd)
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringP("type", "t", "", "Media type: image, video, audio or document")
	downloadCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(pickImageCmd)
}
