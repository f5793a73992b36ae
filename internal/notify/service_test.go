package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

type captureSender struct {
	sent []EmailMessage
	err  error
}

func (c *captureSender) Send(_ context.Context, msg EmailMessage) error {
	c.sent = append(c.sent, msg)
	return c.err
}

var apptDate = time.Date(2025, time.March, 14, 16, 0, 0, 0, time.UTC)

func TestLateCancellationMessage(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, "owner@example.com", "https://salon.example", logging.Default())

	if err := svc.LateCancellation(context.Background(), Recipient{Email: "ana@example.com", Name: "Ana"}, apptDate, 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Subject != "Cancelación Tardía - Deuda Generada" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "$5000") {
		t.Errorf("expected debt amount in body, got %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "14/03/2025") || !strings.Contains(msg.Body, "16:00") {
		t.Errorf("expected formatted date and time in body, got %q", msg.Body)
	}
}

func TestNoShowNotifiesClientAndOwner(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, "owner@example.com", "https://salon.example", logging.Default())

	client := Recipient{Email: "ana@example.com", Name: "Ana", Phone: "+54911"}
	if err := svc.NoShow(context.Background(), client, apptDate, "Kapping Gel", 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected client and owner emails, got %d", len(sender.sent))
	}
	if sender.sent[0].To != "ana@example.com" {
		t.Errorf("expected first email to client, got %s", sender.sent[0].To)
	}
	if sender.sent[1].To != "owner@example.com" {
		t.Errorf("expected second email to owner, got %s", sender.sent[1].To)
	}
	if !strings.Contains(sender.sent[1].Body, "Kapping Gel") {
		t.Errorf("expected service name in owner alert, got %q", sender.sent[1].Body)
	}
}

func TestBookingConfirmedAmounts(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, "owner@example.com", "https://salon.example", logging.Default())

	client := Recipient{Email: "ana@example.com", Name: "Ana"}
	if err := svc.BookingConfirmed(context.Background(), client, apptDate, "Kapping Gel", 5000, 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := sender.sent[0].Body
	if !strings.Contains(body, "Seña abonada: $5000") || !strings.Contains(body, "Resta abonar en el local: $5000") {
		t.Errorf("expected paid and due amounts in body, got %q", body)
	}
	if !strings.Contains(body, "72hs") {
		t.Errorf("expected cancellation policy restatement, got %q", body)
	}
}

func TestAdminCancellationPolicyBranches(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, "", "https://salon.example", logging.Default())
	client := Recipient{Email: "ana@example.com", Name: "Ana"}

	if err := svc.AdminCancellation(context.Background(), client, apptDate, "feriado", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.AdminCancellation(context.Background(), client, apptDate, "feriado", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sender.sent[0].Body, "más de 72 horas") {
		t.Errorf("expected early policy text, got %q", sender.sent[0].Body)
	}
	if !strings.Contains(sender.sent[1].Body, "menos de 72 horas") {
		t.Errorf("expected late policy text, got %q", sender.sent[1].Body)
	}
}

func TestSendFailureIsReturned(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	svc := NewService(sender, "", "https://salon.example", logging.Default())

	err := svc.EarlyCancellation(context.Background(), Recipient{Email: "a@b.c"}, 100)
	if err == nil {
		t.Fatal("expected error to propagate for caller-side logging")
	}
}

func TestNilSenderIsNoop(t *testing.T) {
	svc := NewService(nil, "", "https://salon.example", logging.Default())
	if err := svc.EarlyCancellation(context.Background(), Recipient{Email: "a@b.c"}, 100); err != nil {
		t.Fatalf("expected nil error with no sender, got %v", err)
	}
}
