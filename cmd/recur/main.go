package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/recur/internal/calendar"
	"github.com/username/recur/internal/config"
)

var (
	configPath string
	logger     = zap.NewNop()

	loadedCfg *config.Config
	loadErr   error
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recur",
		Short: "Recurring calendar dates",
		Long:  "Check, list and export recurring dates and their combinations defined in a config file",
		Example: `  recur check standup 2024-01-03
  recur list retro --count 5 --from today
  recur month --month 2024-02
  recur export --out calendar.ics`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load once; commands read the result through loadCalendar
			loadedCfg, loadErr = config.Load(configPath)
			if loadErr != nil {
				initLogger("info")
				return nil
			}

			if loadedCfg.Log.File == "" {
				initLogger(loadedCfg.Log.GetLevel())
				return nil
			}

			fileLogger, err := initFileLogger(loadedCfg.Log.File, loadedCfg.Log.GetLevel())
			if err != nil {
				return err
			}
			logger = fileLogger
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(monthCmd())
	rootCmd.AddCommand(weekdayCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

// initializeCalendar loads the rules file (if any) and builds the config
// schedules on top of it
func initializeCalendar(cfg *config.Config) (calendar.Calendar, error) {
	fileCal := calendar.NewFileCalendar(cfg.Calendar.RulesFile, logger)
	if cfg.Calendar.RulesFile != "" {
		if err := fileCal.Load(); err != nil {
			return nil, fmt.Errorf("failed to load rules file: %w", err)
		}
	}

	scheduleCal, err := calendar.NewScheduleCalendar(cfg.Calendar, fileCal, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar: %w", err)
	}

	return calendar.NewCompositeCalendar(scheduleCal, fileCal, logger), nil
}

func loadCalendar() (*config.Config, calendar.Calendar, error) {
	if loadErr != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", loadErr)
	}
	cfg := loadedCfg
	if cfg == nil {
		return nil, nil, errors.New("config not loaded")
	}

	cal, err := initializeCalendar(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cal, nil
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		config.Level = lvl
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,   // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
