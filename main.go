package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"murmur/audio"
	"murmur/beep"
	"murmur/config"
	"murmur/doctor"
	"murmur/gesture"
	"murmur/mlog"
	"murmur/notify"
	"murmur/output"
	"murmur/pipeline"
	"murmur/secret"
	"murmur/transcriber"
)

var version = "dev"

func main() {
	configFlag := flag.String("config", "", "Settings file path (default: OS config dir)")
	providerFlag := flag.String("provider", "", "Transcription provider: openai or groq")
	langFlag := flag.String("lang", "", "Language code for transcription (e.g., en, es, fr)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	formatFlag := flag.String("format", "", "Clip format: wav or flac")
	autoPasteFlag := flag.Bool("autopaste", true, "Auto-paste into the focused window after transcription")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location)")
	setKeyFlag := flag.String("set-key", "", "Store an API key for the named provider and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	noSoundFlag := flag.Bool("nosound", false, "Disable audio cues")
	noNotifyFlag := flag.Bool("nonotify", false, "Disable desktop notifications")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}

	// Resolve log directory early
	logPath, err := mlog.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	mlog.SetDir(logPath)
	if err := mlog.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(mlog.Dir(), "crash_log.txt")
	if crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if err := mlog.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer mlog.Close()

	secrets := secret.NewKeyring()

	if *setKeyFlag != "" {
		os.Exit(storeKey(secrets, *setKeyFlag))
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		cfgPath, err = config.Path()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override the settings file for this run only.
	if *providerFlag != "" {
		cfg.Provider = *providerFlag
	}
	if *langFlag != "" {
		cfg.Language = *langFlag
	}
	if *deviceFlag != "" {
		cfg.InputDevice = *deviceFlag
	}
	if *formatFlag != "" {
		cfg.Format = *formatFlag
	}
	applyAutoPaste(&cfg, flag.CommandLine, *autoPasteFlag)

	switch cfg.Format {
	case "wav", "flac":
	default:
		fmt.Printf("Error: unknown format %q (use wav or flac)\n", cfg.Format)
		os.Exit(1)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(cfg, secrets))
	}
	if *noSoundFlag {
		beep.Disable()
	}
	if *noNotifyFlag {
		notify.Disable()
	}

	if err := run(cfg, secrets); err != nil {
		mlog.Errorf("fatal: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyAutoPaste overrides the setting only when -autopaste was given on the
// command line. A bool flag left at its default is indistinguishable from an
// explicit value, so flag.Visit decides.
func applyAutoPaste(cfg *config.Config, fs *flag.FlagSet, value bool) {
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "autopaste" {
			cfg.AutoPaste = value
		}
	})
}

func run(cfg config.Config, secrets secret.Store) error {
	client, err := transcriber.NewClient(secrets, cfg.Provider)
	if err != nil {
		return err
	}
	client.SetLanguage(cfg.Language)
	client.SetFilter(cfg.Filter())
	client.Warm()

	actx, err := audio.NewContext()
	if err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}
	defer actx.Close()

	combo, err := cfg.Combo()
	if err != nil {
		return err
	}
	source, err := gesture.NewSource()
	if err != nil {
		return fmt.Errorf("key event source: %w", err)
	}
	tracker, err := gesture.NewTracker(source, combo)
	if err != nil {
		return fmt.Errorf("registering shortcut: %w", err)
	}
	defer tracker.Close()

	focus := output.NewFrontmost()
	sup, err := pipeline.New(pipeline.Config{
		Audio:       actx,
		DeviceName:  cfg.InputDevice,
		Format:      cfg.Format,
		Transcriber: client,
		Sink:        output.NewDesktop(cfg.AutoPaste, focus),
		Focus:       focus,
		MinClip:     cfg.MinClip(),
		Cooldown:    cfg.Cooldown(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx, tracker.Intents())

	beep.Init()
	fmt.Printf("murmur %s: hold %s to dictate (provider: %s)\n", version, combo, cfg.Provider)
	mlog.Infof("ready: shortcut=%s provider=%s format=%s", combo, cfg.Provider, cfg.Format)

	consumeEvents(ctx, sup)
	fmt.Println("\nbye")
	return nil
}

// consumeEvents is the whole UI: one line per pipeline event, with audio
// cues and a toast for errors.
func consumeEvents(ctx context.Context, sup *pipeline.Supervisor) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sup.Events():
			switch ev.Kind {
			case pipeline.EventRecordingStarted:
				beep.PlayStart()
				fmt.Println("● recording...")
			case pipeline.EventLevel:
				// levels feed the log only; no meter in console mode
			case pipeline.EventTranscribingStarted:
				beep.PlayEnd()
				fmt.Println("  transcribing...")
			case pipeline.EventTranscription:
				fmt.Printf("> %s\n", ev.Text)
			case pipeline.EventNoSpeech:
				fmt.Println("  no speech detected")
			case pipeline.EventDiscarded:
				fmt.Println("  (too short, ignored)")
			case pipeline.EventSilenceWarning:
				beep.PlayError()
				fmt.Println("  still recording, no voice detected")
			case pipeline.EventSilenceCleared:
				fmt.Println("  voice detected")
			case pipeline.EventError:
				beep.PlayError()
				notify.Error(ev.Message)
				fmt.Printf("  error: %s\n", ev.Message)
			}
		}
	}
}

// storeKey reads an API key from stdin and saves it to the OS keyring.
func storeKey(secrets secret.Store, provider string) int {
	switch provider {
	case "openai", "groq":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown provider %q (use openai or groq)\n", provider)
		return 1
	}
	fmt.Printf("Paste %s API key: ", provider)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	key := strings.TrimSpace(line)
	if key == "" {
		fmt.Fprintln(os.Stderr, "Error: empty key")
		return 1
	}
	if err := secrets.Set(provider, key); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Stored %s key in the system keyring.\n", provider)
	return 0
}
