package archive

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// limitedWriter throttles writes to a byte rate.
type limitedWriter struct {
	ctx     context.Context
	w       io.Writer
	limiter *rate.Limiter
}

func newLimitedWriter(ctx context.Context, w io.Writer, bytesPerSec int) io.Writer {
	if bytesPerSec <= 0 {
		return w
	}
	return &limitedWriter{
		ctx:     ctx,
		w:       w,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec),
	}
}

// Write waits for tokens in chunks no larger than the limiter burst.
func (lw *limitedWriter) Write(p []byte) (int, error) {
	written := 0
	burst := lw.limiter.Burst()
	for len(p) > 0 {
		n := min(len(p), burst)
		if err := lw.limiter.WaitN(lw.ctx, n); err != nil {
			return written, err
		}
		m, err := lw.w.Write(p[:n])
		written += m
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}

// countingWriter counts bytes passed to w.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
