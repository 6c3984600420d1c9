package internal

import (
	"strings"
	"time"
)

type Config struct {
	Addr                 string        `env:"ADDR,default=:8080"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	CensoredWords        string        `env:"CENSORED_WORDS"`
	CensoredChar         string        `env:"CENSORED_CHAR,default=*"`
}

// CensoredWordList splits the comma-separated CENSORED_WORDS variable.
// An unset variable disables moderation entirely.
func (c Config) CensoredWordList() []string {
	if c.CensoredWords == "" {
		return nil
	}
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// CensoredRune returns the single masking character.
func (c Config) CensoredRune() rune {
	r := []rune(c.CensoredChar)
	if len(r) != 1 {
		return '*'
	}
	return r[0]
}
