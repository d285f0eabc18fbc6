// Package console holds the transient per-page state of the admin UI:
// notification banners, list filters, forms and the delete confirmation.
package console

import (
	"sync"
	"time"
)

// DefaultBannerDuration is how long a banner stays visible.
const DefaultBannerDuration = 2500 * time.Millisecond

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

type Notice struct {
	Kind    Kind      `json:"kind,omitempty"`
	Message string    `json:"message,omitempty"`
	Visible bool      `json:"visible"`
	At      time.Time `json:"at,omitempty"`
}

// Banner shows one notice at a time and hides it after the duration. A new
// Flash replaces the current notice and restarts the countdown.
type Banner struct {
	duration time.Duration

	mu        sync.Mutex
	notice    Notice
	timer     *time.Timer
	gen       uint64
	listeners []func(Notice)
}

func NewBanner(duration time.Duration) *Banner {
	if duration <= 0 {
		duration = DefaultBannerDuration
	}
	return &Banner{duration: duration}
}

func (b *Banner) Flash(kind Kind, message string) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	if b.timer != nil {
		b.timer.Stop()
	}
	b.notice = Notice{Kind: kind, Message: message, Visible: true, At: time.Now().UTC()}
	b.timer = time.AfterFunc(b.duration, func() { b.expire(gen) })
	notice, listeners := b.notice, b.listeners
	b.mu.Unlock()
	notify(listeners, notice)
}

func (b *Banner) Success(message string) { b.Flash(KindSuccess, message) }

func (b *Banner) Error(message string) { b.Flash(KindError, message) }

func (b *Banner) Info(message string) { b.Flash(KindInfo, message) }

func (b *Banner) Current() Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notice
}

// Clear hides the banner immediately.
func (b *Banner) Clear() {
	b.mu.Lock()
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.notice = Notice{}
	listeners := b.listeners
	b.mu.Unlock()
	notify(listeners, Notice{})
}

// OnChange registers fn for every show and hide.
func (b *Banner) OnChange(fn func(Notice)) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

func (b *Banner) expire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	b.notice = Notice{}
	listeners := b.listeners
	b.mu.Unlock()
	notify(listeners, Notice{})
}

func notify(listeners []func(Notice), notice Notice) {
	for _, fn := range listeners {
		fn(notice)
	}
}
