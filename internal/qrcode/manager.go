// Package qrcode manages the rotating check-in QR code shown at the
// site entrance. The code encodes a random token that is replaced on a
// fixed interval so printed copies go stale quickly.
package qrcode

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	qr "github.com/skip2/go-qrcode"

	"github.com/chiaheng/health-linebot-go/internal/logger"
	"github.com/chiaheng/health-linebot-go/internal/metrics"
)

// pngSize is the width and height of the generated PNG in pixels.
const pngSize = 256

// Manager holds the current QR code entirely in memory.
// It is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	token   string
	png     []byte
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewManager creates a manager and generates the initial code.
// m may be nil when metrics are not wired.
func NewManager(log *logger.Logger, m *metrics.Metrics) (*Manager, error) {
	mgr := &Manager{
		log:     log.WithModule("qrcode"),
		metrics: m,
	}
	if err := mgr.Rotate(); err != nil {
		return nil, fmt.Errorf("generate initial qr code: %w", err)
	}
	return mgr, nil
}

// Rotate replaces the current code with one for a fresh random token.
func (mgr *Manager) Rotate() error {
	token := uuid.NewString()

	png, err := qr.Encode(token, qr.Medium, pngSize)
	if err != nil {
		return fmt.Errorf("encode qr code: %w", err)
	}

	mgr.mu.Lock()
	mgr.token = token
	mgr.png = png
	mgr.mu.Unlock()

	if mgr.metrics != nil {
		mgr.metrics.RecordQRRotation()
	}
	mgr.log.Debug("rotated check-in qr code")

	return nil
}

// PNG returns a copy of the current code image.
func (mgr *Manager) PNG() []byte {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	out := make([]byte, len(mgr.png))
	copy(out, mgr.png)
	return out
}

// Token returns the token encoded in the current code.
func (mgr *Manager) Token() string {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return mgr.token
}
