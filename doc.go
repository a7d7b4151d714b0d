// Package tessera is the Composition Root for the tessera ticket store.
//
// It connects the ticket domain (pkg/core) with the QR encoder and the
// filesystem store (pkg/adapters) and hands back a ready Service.
//
// Each ticket gets a random id, a creation time and a free-form payload. The
// serialized ticket is rendered as a QR code and stored as
//
//	<root>/<ticket-id>/qrcode.png
//	<root>/<ticket-id>/metadata.json
//
// Listing scans the root and skips directories whose metadata is missing or
// unreadable, so a crash in the middle of a save never hides other tickets.
//
// Usage:
//
//	svc, err := tessera.New("./tickets", tessera.WithLogger(logger))
//
//	res := svc.GenerateTicket(ctx, tessera.Payload{"eventName": "Demo"})
//	if !res.Success {
//		log.Fatal(res.Error)
//	}
//	fmt.Println(res.Ticket.ID, res.EmbeddableImage[:30])
package tessera
