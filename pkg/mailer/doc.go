// Package mailer defines how rendered messages reach their addressees.
//
// A Channel delivers one Email per call and has an explicit lifecycle: Open
// once before the first message of a batch, Close once after the last. Two
// implementations ship with the module:
//
//   - resend: the Resend transactional email API
//   - smtp: a single authenticated SMTP session reused for every message
//
// Discard accepts messages without delivering them and backs dry runs.
//
// # Usage
//
//	ch := resend.New(resend.Config{
//		APIKey:      os.Getenv("PAPERCO_KEY"),
//		SenderEmail: "team@example.com",
//		SenderName:  "Team",
//	})
//	if err := ch.Open(ctx); err != nil {
//		return err // errors.Is(err, mailer.ErrEstablish)
//	}
//	defer ch.Close()
//
//	receipt, err := ch.Send(ctx, &mailer.Email{
//		To:      "user@example.com",
//		Subject: "Welcome",
//		HTML:    "<p>Hello!</p>",
//		Text:    "Hello!",
//	})
//	switch {
//	case mailer.IsChannelFatal(err):
//		// stop the batch
//	case err != nil:
//		// this recipient failed, keep going
//	default:
//		log.Println(receipt.MessageID)
//	}
//
// # Errors
//
//   - ErrNoRecipient, ErrNoSubject, ErrNoContent: the message is incomplete
//   - ErrEstablish: Open failed, nothing can be sent
//   - ErrSendFailed: one message failed, the channel is still usable
//   - ErrSessionBroken: the channel cannot send any more messages
//   - ErrNotOpen: Send before Open or after Close
package mailer
