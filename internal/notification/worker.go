package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"filament-station/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans spool-move notifications out to every push subscription.
// Jobs are spool ids dispatched by the station after a successful move.
type WorkerPool struct {
	size    int
	jobs    chan int64
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size), // Buffered channel
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case spoolID := <-wp.jobs:
			wp.notifyMove(ctx, spoolID)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(spoolID int64) {
	wp.jobs <- spoolID
}

// notifyMove tells every subscriber that a spool changed location.
func (wp *WorkerPool) notifyMove(ctx context.Context, spoolID int64) {
	subscriptions, err := wp.store.Subscriptions(ctx)
	if err != nil {
		log.Printf("Error fetching subscriptions for spool %d: %v", spoolID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := fmt.Sprintf("%d", spoolID)
	location := "a new location"
	if spool, err := wp.store.GetSpool(ctx, spoolID); err != nil {
		log.Printf("Error fetching spool %d: %v", spoolID, err)
	} else if spool != nil {
		if spool.Name != "" {
			label = spool.Name
		}
		if spool.Location != nil {
			location = *spool.Location
		}
	}

	message := fmt.Sprintf("Spool %s moved to %s", label, location)
	log.Printf("Sending %d notifications for spool %d", len(subscriptions), spoolID)
	for _, sub := range subscriptions {
		wp.send(ctx, sub.Endpoint, sub.P256DH, sub.Auth, []byte(message))
	}
}

// send delivers a single web push notification.
func (wp *WorkerPool) send(ctx context.Context, endpoint, p256dh, auth string, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: p256dh,
			Auth:   auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", endpoint)
		if err := wp.store.DeleteSubscription(ctx, endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", endpoint, err)
		}
	}
}
