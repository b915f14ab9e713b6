package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"cedra_storefront/internal/models"

	"github.com/wneessen/go-mail"
)

const sendTimeout = 30 * time.Second

// Sender est satisfait par *mail.Client
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPConfig est lue depuis SMTP_*
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func LoadSMTPConfig() SMTPConfig {
	cfg := SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     587,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
	if cfg.From == "" {
		cfg.From = "noreply@cedra.in"
	}
	if port, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && port > 0 {
		cfg.Port = port
	}
	return cfg
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

func NewSMTPClient(cfg SMTPConfig) (*mail.Client, error) {
	return mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
}

// Mailer envoie les emails de commande en arrière-plan.
// Un échec d'envoi est journalisé, jamais remonté à la commande.
type Mailer struct {
	sender Sender
	from   string
	wg     sync.WaitGroup
}

func NewMailer(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: from}
}

func (m *Mailer) OrderCreated(ctx context.Context, order models.Order) {
	m.send(ctx, order.CustomerEmail, "✅ Commande confirmée - Cedra", GenerateOrderConfirmationHTML(order))
}

func (m *Mailer) StatusChanged(ctx context.Context, order models.Order, previous models.OrderStatus) {
	if order.Status == previous {
		return
	}
	m.send(ctx, order.CustomerEmail, statusEmailSubject(order.Status), generateStatusEmailHTML(order))
}

// Wait attend la fin des envois en cours
func (m *Mailer) Wait() {
	m.wg.Wait()
}

func (m *Mailer) send(ctx context.Context, to, subject, html string) {
	if to == "" {
		return
	}

	msg, err := m.message(to, subject, html)
	if err != nil {
		log.Printf("❌ Email invalide pour %s: %v", to, err)
		return
	}

	// la requête peut se terminer avant l'envoi
	ctx = context.WithoutCancel(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()

		log.Println("📤 Envoi de l'e-mail à", to)
		if err := m.sender.DialAndSendWithContext(sendCtx, msg); err != nil {
			log.Printf("❌ Erreur envoi email: %v", err)
			return
		}
		log.Printf("📧 Email envoyé: %s → %s", subject, to)
	}()
}

func (m *Mailer) message(to, subject, html string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("expéditeur: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("destinataire: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	return msg, nil
}

// NopNotifier est utilisé quand SMTP n'est pas configuré
type NopNotifier struct{}

func (NopNotifier) OrderCreated(context.Context, models.Order) {}

func (NopNotifier) StatusChanged(context.Context, models.Order, models.OrderStatus) {}
