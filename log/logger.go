package log

//go:generate go run github.com/abice/go-enum -f=$GOFILE --marshal --names

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/namedcache/namedcache/instanceid"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const hostnameFile = "/etc/hostname"

// FormatType format for logging ENUM(
// text // logging as text
// json // JSON format
// )
type FormatType int

// Level log level ENUM(
// info
// trace
// debug
// warn
// error
// fatal
// )
type Level int

type Config struct {
	Level      Level      `yaml:"level" default:"info"`
	Format     FormatType `yaml:"format" default:"text"`
	Privacy    bool       `yaml:"privacy" default:"false"`
	Timestamp  bool       `yaml:"timestamp" default:"true"`
	Hostname   bool       `yaml:"hostname" default:"false"`
	InstanceID bool       `yaml:"instanceId" default:"false"`
}

// Logger is the global logging instance
// nolint:gochecknoglobals
var logger *logrus.Logger

// nolint:gochecknoinits
func init() {
	logger = logrus.New()

	ConfigureLogger(DefaultConfig())
}

// DefaultConfig returns the logger configuration used before any config file is read
func DefaultConfig() Config {
	return Config{
		Level:     LevelInfo,
		Format:    FormatTypeText,
		Timestamp: true,
	}
}

// Log returns the global logger
func Log() *logrus.Logger {
	return logger
}

// PrefixedLog return the global logger with prefix
func PrefixedLog(prefix string) *logrus.Entry {
	return logger.WithField("prefix", prefix)
}

// EscapeInput removes line breaks from input
func EscapeInput(input string) string {
	result := strings.ReplaceAll(input, "\n", "")
	result = strings.ReplaceAll(result, "\r", "")

	return result
}

// ConfigureLogger applies configuration to the global logger
func ConfigureLogger(lc Config) {
	if level, err := logrus.ParseLevel(lc.Level.String()); err != nil {
		logger.Fatalf("invalid log level %s %v", lc.Level, err)
	} else {
		logger.SetLevel(level)
	}

	var formatter logrus.Formatter

	switch lc.Format {
	case FormatTypeText:
		logFormatter := &prefixed.TextFormatter{
			TimestampFormat:  "2006-01-02 15:04:05",
			FullTimestamp:    true,
			ForceFormatting:  true,
			ForceColors:      false,
			QuoteEmptyFields: true,
			DisableTimestamp: !lc.Timestamp,
		}

		logFormatter.SetColorScheme(&prefixed.ColorScheme{
			PrefixStyle:    "blue+b",
			TimestampStyle: "white+h",
		})

		formatter = logFormatter

	case FormatTypeJson:
		formatter = &logrus.JSONFormatter{}
	}

	fields := logrus.Fields{}

	if hn, err := getHostname(hostnameFile); err == nil && lc.Hostname {
		fields["hostname"] = hn
	}

	if lc.InstanceID {
		fields["instanceId"] = instanceid.String()
	}

	if len(fields) > 0 {
		formatter = fieldsFormatter{
			fields:    fields,
			formatter: formatter,
		}
	}

	logger.SetFormatter(formatter)
}

// Silence disables the logger output
func Silence() {
	logger.Out = io.Discard
}

// fieldsFormatter adds static fields to every entry before delegating
type fieldsFormatter struct {
	fields    logrus.Fields
	formatter logrus.Formatter
}

func (f fieldsFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	newEntry := *entry
	newEntry.Data = make(logrus.Fields, len(entry.Data)+len(f.fields))

	for k, v := range entry.Data {
		newEntry.Data[k] = v
	}

	for k, v := range f.fields {
		newEntry.Data[k] = v
	}

	return f.formatter.Format(&newEntry)
}

func getHostname(location string) (string, error) {
	if location != "" {
		if hn, err := os.ReadFile(location); err == nil {
			return strings.ToLower(strings.TrimSpace(string(hn))), nil
		}
	}

	if hn, err := os.Hostname(); err == nil {
		return hn, nil
	}

	return "", errors.New("hostname couldn't be determined")
}
