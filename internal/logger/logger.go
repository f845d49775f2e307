package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var (
	defaultLogger *logrus.Logger
	once          sync.Once
)

// Setup はLOGLEVEL環境変数に従ってプロセス共通のロガーを初期化する
func Setup() *logrus.Logger {
	log := logrus.New()
	log.Formatter = &prefixed.TextFormatter{
		FullTimestamp:   true,
		ForceFormatting: true,
	}
	log.SetLevel(ParseLevel(os.Getenv("LOGLEVEL")))
	log.SetOutput(os.Stdout)
	defaultLogger = log
	return log
}

// ParseLevel はログレベル文字列をlogrusのレベルに変換する（不明な場合はInfo）
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// ApplyLevel は.env読み込み後などにログレベルを設定し直す。空文字の場合は変更しない
func ApplyLevel(level string) {
	if level == "" {
		return
	}
	L().SetLevel(ParseLevel(level))
}

// L はプロセス共通のロガーを返す。未初期化の場合はSetupする
func L() *logrus.Logger {
	once.Do(func() {
		if defaultLogger == nil {
			Setup()
		}
	})
	return defaultLogger
}
