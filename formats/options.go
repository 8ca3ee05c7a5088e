package formats

import "github.com/anacrolix/log"

const (
	DefaultMaxDepth = 512
	DefaultReadSize = 4096
)

type config struct {
	maxDepth int
	readSize int
	logger   *log.Logger
}

// Option configures Decode, DecodeOne and Reader.
type Option func(*config)

// WithMaxDepth bounds how deeply the materializer recurses. Deeper input is DepthExceeded.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithReadSize sets the minimum free space a Reader asks its source to fill per read.
func WithReadSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// WithLogger makes a Reader log its buffer refills at debug level.
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		c.logger = &l
	}
}

func newConfig(opts []Option) config {
	c := config{
		maxDepth: DefaultMaxDepth,
		readSize: DefaultReadSize,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

func (c config) debugf(format string, a ...interface{}) {
	if c.logger == nil {
		return
	}
	c.logger.Log(log.Fmsg(format, a...).SetLevel(log.Debug))
}
