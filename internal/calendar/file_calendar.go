package calendar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/username/recur/pkg/recurrence"
)

// FileCalendar implements Calendar using a local rules file
type FileCalendar struct {
	filePath string
	logger   *zap.Logger
	data     map[string]*recurrence.Recurrence
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		filePath: filePath,
		logger:   logger,
		data:     make(map[string]*recurrence.Recurrence),
	}
}

// Load loads rules from file
func (fc *FileCalendar) Load() error {
	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open rules file: %w", err)
	}
	defer file.Close()

	if err := fc.LoadFrom(file); err != nil {
		return err
	}

	fc.logger.Info("Rules file loaded",
		zap.String("file", fc.filePath),
		zap.Int("schedules", len(fc.data)))

	return nil
}

// LoadFrom parses rules from r, one per line:
//
//	NAME START key=value [key=value...]
//
// Keys are the RuleSpec keys (every, every_other, of, interval, until...).
// Blank lines and lines starting with # are skipped.
func (fc *FileCalendar) LoadFrom(r io.Reader) error {
	data := make(map[string]*recurrence.Recurrence)
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, rec, err := parseRuleLine(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", fc.source(), lineNo, err)
		}
		if _, dup := data[name]; dup {
			return fmt.Errorf("%s:%d: schedule %s is defined twice", fc.source(), lineNo, name)
		}
		data[name] = rec

		fc.logger.Debug("Rule parsed",
			zap.String("name", name),
			zap.Stringer("recurrence", rec))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading rules file: %w", err)
	}

	fc.data = data
	return nil
}

// Lookup returns the recurrence defined under name
func (fc *FileCalendar) Lookup(name string) (recurrence.Predicate, error) {
	rec, ok := fc.data[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchedule, name)
	}
	return rec, nil
}

// Names returns every schedule name in the file, sorted
func (fc *FileCalendar) Names() []string {
	return sortedNames(fc.data)
}

func (fc *FileCalendar) source() string {
	if fc.filePath == "" {
		return "rules"
	}
	return fc.filePath
}

func parseRuleLine(line string) (string, *recurrence.Recurrence, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", nil, fmt.Errorf("expected NAME START key=value, got %q", line)
	}

	keys := make(map[string]string, len(fields)-2)
	for _, field := range fields[2:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" || value == "" {
			return "", nil, fmt.Errorf("expected key=value, got %q", field)
		}
		keys[strings.ToLower(key)] = value
	}

	var spec recurrence.RuleSpec
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &spec,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return "", nil, err
	}
	if err := decoder.Decode(keys); err != nil {
		return "", nil, fmt.Errorf("failed to decode rule: %w", err)
	}

	rec, err := recurrence.New(fields[1], spec)
	if err != nil {
		return "", nil, err
	}
	return normalizeName(fields[0]), rec, nil
}
