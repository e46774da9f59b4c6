// Saathi is a bilingual (English and Marathi) terminal assistant.
//
// Usage:
//
//	saathi [--name NAME] [--backend auto|gemini|openai|none] [--speech off|azure|espeak] [--voice] [--plain]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hammamikhairi/saathi/internal/backend"
	"github.com/hammamikhairi/saathi/internal/config"
	"github.com/hammamikhairi/saathi/internal/conversation"
	"github.com/hammamikhairi/saathi/internal/display"
	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
	"github.com/hammamikhairi/saathi/internal/responder"
	"github.com/hammamikhairi/saathi/internal/speech"
	"github.com/hammamikhairi/saathi/internal/storage"
	"github.com/hammamikhairi/saathi/internal/translate"
)

// farewellGrace bounds how long exit waits for queued speech.
const farewellGrace = 5 * time.Second

func main() {
	fs := pflag.NewFlagSet("saathi", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	logOut, closeLog := openLog(cfg.Log.File)
	defer closeLog()

	logLevel := logger.LevelNormal
	if cfg.Log.Verbose {
		logLevel = logger.LevelVerbose
	}
	if cfg.Log.Quiet {
		logLevel = logger.LevelOff
	}
	log := logger.New(logLevel, logOut)
	defer log.Sync()

	// Route Go's default log package (used by third-party libs like oto
	// and whisper) through the same logger.
	restoreStdLog := zap.RedirectStdLog(log.Zap())
	defer restoreStdLog()
	if cfg.ConfigFile != "" {
		log.Info("config loaded from %s", cfg.ConfigFile)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	// Session and language backend.
	store := storage.NewMemoryStore(log)
	lb := backend.New(ctx, cfg.Backend, log, backend.WithAssistantName(cfg.AssistantName))
	session := domain.NewSession(uuid.NewString(), cfg.UserName, lb.Enabled())
	if err := store.Save(ctx, session); err != nil {
		log.Error("saving session: %v", err)
	}
	log.Info("session %s started (user=%s, backend=%s)", session.ID, session.UserName, lb.Name())

	respOpts := []responder.Option{
		responder.WithAssistantName(cfg.AssistantName),
		responder.WithBackendTimeout(cfg.Backend.Timeout),
	}
	if cfg.Seed != 0 {
		respOpts = append(respOpts, responder.WithSeed(cfg.Seed))
	}
	resp := responder.New(session, lb, log, respOpts...)

	// Front-end: Bubble Tea by default, readline with --plain.
	var (
		ui       *display.UI
		rl       lineReaderCloser
		out      console
		printFn  conversation.PrintFunc
		speaking *speech.SpeakingNotifier
	)
	if cfg.Plain {
		inst, err := newReadline()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		rl = inst
		out = plainConsole{w: inst.Stdout()}
		printFn = func(format string, a ...interface{}) {
			fmt.Fprintf(inst.Stdout(), format+"\n", a...)
		}
	} else {
		status := func() []display.Segment {
			segs := []display.Segment{{Label: "backend", Value: lb.Name()}}
			if speaking != nil {
				segs = append(segs, display.Segment{Label: "tts", Value: onOff(speaking.Enabled())})
			}
			return segs
		}
		ui = display.NewUI(store, session.ID, cfg.AssistantName, status)
		out = ui
		printFn = ui.Printf
	}

	var notifier domain.Notifier = conversation.NewCLINotifier(cfg.AssistantName, log, printFn)

	// Text-to-speech.
	var mouth *speech.Mouth
	if speaker := buildSpeaker(cfg.Speech, log); speaker != nil {
		mouth = speech.NewMouth(speaker, log)
		mouth.Start(ctx)
		speaking = speech.NewSpeakingNotifier(notifier, mouth, cfg.Speech.Enabled, log)
		notifier = speaking
		go mouth.Prefetch(ctx, speech.ListeningFillers()...)
	}

	// Speech-to-text.
	var listener domain.Listener = speech.NewNoOp(log)
	if cfg.Speech.Voice {
		ear, err := speech.NewEar(cfg.Speech.WhisperBin, cfg.Speech.WhisperModel, log,
			speech.WithTempDir(filepath.Join(cfg.Speech.CacheDir, "stt")),
			speech.WithMouth(mouth),
		)
		if err != nil {
			log.Warn("voice input disabled: %v", err)
		} else {
			listener = ear
			log.Info("voice input enabled (bin=%s, model=%s)", cfg.Speech.WhisperBin, cfg.Speech.WhisperModel)
		}
	}

	// Translation shares the Gemini key with the backend.
	var tr domain.Translator
	if cfg.Backend.GeminiKey != "" {
		g, err := translate.NewGeminiTranslator(ctx, cfg.Backend.GeminiKey, cfg.Translate.Model, log)
		if err != nil {
			log.Warn("translation disabled: %v", err)
		} else {
			tr = g
		}
	}

	app := &cliApp{
		parser:        conversation.NewCommandParser(log),
		responder:     resp,
		notifier:      notifier,
		out:           out,
		listener:      listener,
		listenTimeout: cfg.Speech.ListenTimeout,
		translator:    translate.NewService(tr, log),
		log:           log,
	}
	if speaking != nil {
		app.speech = speaking
		app.mouth = mouth
	}
	if cfg.Translate.Auto != "" {
		if _, err := translate.Resolve(cfg.Translate.Auto); err != nil {
			log.Warn("auto-translate disabled: %v", err)
		} else if !app.translator.Available() {
			log.Warn("auto-translate disabled: %v", domain.ErrTranslationUnavailable)
		} else {
			app.autoTo = cfg.Translate.Auto
			app.debounce = translate.NewDebouncer(cfg.Translate.Debounce, app.autoTranslate(ctx))
		}
	}

	fmt.Println(display.RenderBanner("Type 'help' for commands, 'exit' to quit."))
	if !lb.Enabled() {
		out.PrintHint(speech.LineNoBackend())
	}

	if cfg.Plain {
		app.run(ctx, readLines(ctx, rl, out))
		waitForSpeech(mouth, farewellGrace)
		// Cancel first so the reader treats the close as shutdown.
		cancel()
		_ = rl.Close()
		return
	}

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx, ui.InputChan())
		waitForSpeech(mouth, farewellGrace)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal and blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

type lineReaderCloser interface {
	lineReader
	Close() error
}

// openLog returns the log destination. Logs go to a file by default so
// the prompt stays clean.
func openLog(path string) (io.Writer, func()) {
	if path == "" || path == "stderr" {
		return os.Stderr, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not create log dir: %v\n", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		return os.Stderr, func() {}
	}
	return f, func() { _ = f.Close() }
}

// buildSpeaker returns the configured TTS engine, or nil when speech is
// off or the engine cannot start.
func buildSpeaker(cfg config.Speech, log *logger.Logger) domain.Speaker {
	switch cfg.Engine {
	case config.SpeechAzure:
		if cfg.AzureKey == "" || cfg.AzureRegion == "" {
			log.Warn("TTS disabled: set %s and %s", config.EnvAzureSpeechKey, config.EnvAzureSpeechRegion)
			return nil
		}
		player, err := speech.NewPlayer(log)
		if err != nil {
			log.Error("audio player init failed, speech disabled: %v", err)
			return nil
		}
		client := speech.NewAzureClient(cfg.AzureKey, cfg.AzureRegion, log)
		cache := speech.NewAudioCache(speech.DefaultCacheEntries, cfg.CacheDir, cfg.DiskCache, log)
		log.Info("TTS enabled (engine=azure, region=%s)", cfg.AzureRegion)
		return speech.NewAzureSpeaker(client, player, cache, log)
	case config.SpeechEspeak:
		e, err := speech.NewEspeak("", log)
		if err != nil {
			log.Warn("TTS disabled: %v", err)
			return nil
		}
		log.Info("TTS enabled (engine=espeak)")
		return e
	default:
		return nil
	}
}

// waitForSpeech gives queued speech such as the farewell a chance to
// play before exit.
func waitForSpeech(m *speech.Mouth, limit time.Duration) {
	if m == nil {
		return
	}
	deadline := time.Now().Add(limit)
	for m.Busy() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
