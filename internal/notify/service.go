package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

// Recipient identifies who a notification is addressed to.
type Recipient struct {
	Email string
	Name  string
	Phone string
}

// Service builds and sends the salon's transactional emails. All sends are
// best effort: callers fire them after the owning transaction commits and
// failures are only logged.
type Service struct {
	email      EmailSender
	ownerEmail string
	clientURL  string
	logger     *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, ownerEmail, clientURL string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:      email,
		ownerEmail: ownerEmail,
		clientURL:  clientURL,
		logger:     logger,
	}
}

func (s *Service) send(ctx context.Context, msg EmailMessage) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping", "to", msg.To)
		return nil
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: send failed", "error", err, "to", msg.To, "subject", msg.Subject)
		return err
	}
	return nil
}

func formatDate(t time.Time) string { return t.Format("02/01/2006") }
func formatTime(t time.Time) string { return t.Format("15:04") }

// EarlyCancellation tells the client their deposit became account credit.
func (s *Service) EarlyCancellation(ctx context.Context, to Recipient, credit float64) error {
	body := fmt.Sprintf("Has cancelado tu turno con anticipación.\nTienes $%.0f a favor válido por 30 días para tu próxima reserva.", credit)
	return s.send(ctx, EmailMessage{
		To:      to.Email,
		ToName:  to.Name,
		Subject: "Cancelación Exitosa - Saldo a Favor",
		Body:    body,
	})
}

// LateCancellation tells the client a debt was generated.
func (s *Service) LateCancellation(ctx context.Context, to Recipient, date time.Time, debt float64) error {
	body := fmt.Sprintf("Has cancelado tu turno del %s a las %s con menos de 72hs de anticipación.\n\nSe ha generado una deuda de $%.0f en tu cuenta.\n\nPor favor, contacta al negocio para regularizar tu situación.",
		formatDate(date), formatTime(date), debt)
	return s.send(ctx, EmailMessage{
		To:      to.Email,
		ToName:  to.Name,
		Subject: "Cancelación Tardía - Deuda Generada",
		Body:    body,
	})
}

// AdminCancellation tells the client the salon cancelled their booking.
// The policy paragraph depends on how far ahead the booking was.
func (s *Service) AdminCancellation(ctx context.Context, to Recipient, date time.Time, reason string, early bool) error {
	policy := "Has cancelado con menos de 72 horas de anticipación.\nSegún nuestra política de cancelación, la seña abonada no es reembolsable ni transferible. Deberás abonar una nueva seña para volver a reservar."
	if early {
		policy = "Has cancelado con más de 72 horas de anticipación.\nSi ya abonaste la seña, esta quedará como crédito a tu favor para un próximo turno. Por favor contáctanos para reprogramar."
	}
	body := fmt.Sprintf("Hola %s,\n\nLamentamos informarte que tu turno para el %s a las %s ha sido cancelado.\n\nMotivo: %s\n\n%s\n\nSaludos,\nNails Xoxi",
		to.Name, formatDate(date), formatTime(date), reason, policy)
	return s.send(ctx, EmailMessage{
		To:      to.Email,
		ToName:  to.Name,
		Subject: "Turno Cancelado - Nails Xoxi",
		Body:    body,
	})
}

// NoShow notifies the client about the generated debt and alerts the owner.
func (s *Service) NoShow(ctx context.Context, client Recipient, date time.Time, serviceName string, debt float64) error {
	clientBody := fmt.Sprintf("Hola %s,\n\nTe informamos que tu turno del %s a las %s ha sido cancelado automáticamente debido a una demora mayor a 10 minutos.\n\nDeuda generada: $%.0f.\n\nPodés abonar ingresando a tu cuenta en %s o contactándonos.",
		client.Name, formatDate(date), formatTime(date), debt, s.clientURL)
	err := s.send(ctx, EmailMessage{
		To:      client.Email,
		ToName:  client.Name,
		Subject: "Turno Cancelado - Inasistencia",
		Body:    clientBody,
	})

	if s.ownerEmail != "" {
		phone := client.Phone
		if phone == "" {
			phone = "No especificado"
		}
		ownerBody := fmt.Sprintf("Inasistencia/Demora Registrada\n------------------\nCliente: %s\nTeléfono: %s\nEmail: %s\n\nFecha: %s\nHora: %s\nServicio: %s\n\nDeuda Generada: $%.0f",
			client.Name, phone, client.Email, formatDate(date), formatTime(date), serviceName, debt)
		if oerr := s.send(ctx, EmailMessage{
			To:      s.ownerEmail,
			Subject: fmt.Sprintf("Inasistencia-Demora: %s - %s", client.Name, formatDate(date)),
			Body:    ownerBody,
		}); err == nil {
			err = oerr
		}
	}
	return err
}

// BookingConfirmed sends the post-payment confirmation to the client and a
// new-booking alert to the owner.
func (s *Service) BookingConfirmed(ctx context.Context, client Recipient, date time.Time, serviceName string, amountPaid, amountDue float64) error {
	clientBody := fmt.Sprintf("Hola %s,\n\n¡Tu turno está confirmado!\n\nFecha: %s\nHora: %s\nServicio: %s\n\nSeña abonada: $%.0f\nResta abonar en el local: $%.0f\n\nRecordá que las cancelaciones con menos de 72hs de anticipación generan una deuda por el saldo restante del servicio.\n\n¡Te esperamos!\nNails Xoxi",
		client.Name, formatDate(date), formatTime(date), serviceName, amountPaid, amountDue)
	err := s.send(ctx, EmailMessage{
		To:      client.Email,
		ToName:  client.Name,
		Subject: "Turno Confirmado - Nails Xoxi",
		Body:    clientBody,
	})

	if s.ownerEmail != "" {
		phone := client.Phone
		if phone == "" {
			phone = "No especificado"
		}
		ownerBody := fmt.Sprintf("Nueva Reserva Confirmada\n------------------\nCliente: %s\nTeléfono: %s\nEmail: %s\n\nFecha: %s\nHora: %s\nServicio: %s\n\nSeña recibida: $%.0f",
			client.Name, phone, client.Email, formatDate(date), formatTime(date), serviceName, amountPaid)
		if oerr := s.send(ctx, EmailMessage{
			To:      s.ownerEmail,
			Subject: fmt.Sprintf("Nueva Reserva: %s - %s %s", client.Name, formatDate(date), formatTime(date)),
			Body:    ownerBody,
		}); err == nil {
			err = oerr
		}
	}
	return err
}

// BookingExpired tells the client their unpaid reservation was released.
func (s *Service) BookingExpired(ctx context.Context, to Recipient, date time.Time) error {
	body := fmt.Sprintf("Hola %s,\n\nTu reserva del %s a las %s fue liberada porque no registramos el pago de la seña.\n\nPodés volver a reservar cuando quieras desde %s.",
		to.Name, formatDate(date), formatTime(date), s.clientURL)
	return s.send(ctx, EmailMessage{
		To:      to.Email,
		ToName:  to.Name,
		Subject: "Reserva Expirada - Nails Xoxi",
		Body:    body,
	})
}

// PasswordReset sends the reset link for a forgotten password.
func (s *Service) PasswordReset(ctx context.Context, to Recipient, token string) error {
	body := fmt.Sprintf("Hola %s,\n\nRecibimos un pedido para restablecer tu contraseña.\n\nIngresá al siguiente enlace para elegir una nueva:\n%s/reset-password?token=%s\n\nEl enlace vence en 1 hora. Si no fuiste vos, ignorá este mensaje.",
		to.Name, s.clientURL, token)
	return s.send(ctx, EmailMessage{
		To:      to.Email,
		ToName:  to.Name,
		Subject: "Restablecer Contraseña - Nails Xoxi",
		Body:    body,
	})
}
