package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"fitslot/internal/logger"
	"fitslot/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
	timeLayout     = "Mon, Jan 2, 2006 at 3:04 PM"
)

type EmailJob struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Config struct {
	From     string
	FromName string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

// Service queues outgoing mail in a Redis list and delivers it over SMTP from Start.
type Service struct {
	redis      *redis.Client
	cfg        Config
	send       func(job EmailJob) error
	retryDelay time.Duration
}

func New(cfg Config, redisAddr string) *Service {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: redisAddr}), cfg)
}

func NewWithClient(rdb *redis.Client, cfg Config) *Service {
	s := &Service{redis: rdb, cfg: cfg, retryDelay: 5 * time.Second}
	s.send = s.sendSMTP
	return s
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, EmailJob{Type: "generic", To: to, Name: name, Subject: subject, Body: body})
}

func (s *Service) enqueue(ctx context.Context, job EmailJob) error {
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		metrics.RecordEmail(job.Type, "queue_failed")
		logger.Error("failed to queue email", "to", job.To, "type", job.Type, "error", err)
		return err
	}

	metrics.RecordEmail(job.Type, "queued")
	logger.Info("email queued", "to", job.To, "type", job.Type)
	return nil
}

// Start delivers queued mail until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}
	metrics.EmailQueueLength.Set(float64(s.QueueLength(ctx)))

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Debug("sending email", "to", job.To, "attempt", job.Tries)
	if err := s.send(job); err != nil {
		logger.Error("failed to send email", "to", job.To, "attempt", job.Tries, "error", err)

		if job.Tries < maxTries {
			select {
			case <-ctx.Done():
			case <-time.After(s.retryDelay):
			}
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, string(data))
			metrics.RecordEmail(job.Type, "retried")
		} else {
			metrics.RecordEmail(job.Type, "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Info("email sent", "to", job.To, "type", job.Type)
}

func (s *Service) sendSMTP(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" && s.cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	return smtp.SendMail(addr, auth, s.cfg.From, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, string(data))
	logger.Error("email moved to failed queue", "to", job.To, "attempts", job.Tries)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) SendBookingRequested(ctx context.Context, email, name, trainer, service string, when time.Time) error {
	body := fmt.Sprintf(`Hi %s,

We received your booking request. Staff will confirm it shortly.

Trainer: %s
Service: %s
Time: %s

- %s`, name, trainer, service, when.Format(timeLayout), s.cfg.FromName)

	return s.enqueue(ctx, EmailJob{
		Type:    "booking_requested",
		To:      email,
		Name:    name,
		Subject: "Booking requested - " + service,
		Body:    body,
	})
}

func (s *Service) SendStatusChanged(ctx context.Context, email, name, status string, when time.Time) error {
	body := fmt.Sprintf(`Hi %s,

Your booking on %s is now: %s.

- %s`, name, when.Format(timeLayout), status, s.cfg.FromName)

	return s.enqueue(ctx, EmailJob{
		Type:    "status_changed",
		To:      email,
		Name:    name,
		Subject: "Booking " + status,
		Body:    body,
	})
}
