package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TimeFormat は進捗行のタイムスタンプ形式
const TimeFormat = "15:04:05"

// New はタイムスタンプ付きのコンソールロガーを作成します
func New(out io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: TimeFormat,
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Setup はグローバルロガーを設定します
func Setup(out io.Writer, debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = New(out, debug)
	return log.Logger
}
