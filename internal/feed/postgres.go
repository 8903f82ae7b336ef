package feed

import (
	"context"
	"go-portfolio-blog/internal/logger"
	"time"

	"github.com/lib/pq"
)

// Channel is the Postgres notification channel the change triggers use.
const Channel = "content_changes"

// PostgresSource forwards Postgres change notifications into a publisher.
type PostgresSource struct {
	listener *pq.Listener
	target   Publisher
	log      logger.Logger
}

// NewPostgresSource connects a listener to the change channel.
func NewPostgresSource(dsn string, target Publisher, log logger.Logger) (*PostgresSource, error) {
	report := func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			log.Error(err, "Change listener lost its connection")
		case pq.ListenerEventReconnected:
			log.Info("Change listener reconnected")
		}
	}
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, report)
	if err := listener.Listen(Channel); err != nil {
		listener.Close()
		return nil, err
	}
	return &PostgresSource{
		listener: listener,
		target:   target,
		log:      log,
	}, nil
}

// Run forwards notifications until ctx is done.
func (s *PostgresSource) Run(ctx context.Context) error {
	defer s.listener.Close()

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-s.listener.Notify:
			// nil after a reconnect; events may have been missed
			if n == nil {
				continue
			}
			e, err := ParseNotification(n.Extra)
			if err != nil {
				s.log.Warn(err.Error())
				continue
			}
			s.target.Publish(e)
		case <-ping.C:
			go func() {
				if err := s.listener.Ping(); err != nil {
					s.log.Error(err, "Change listener ping failed")
				}
			}()
		}
	}
}
