package notification

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerNotifierWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	err := n.Send(context.Background(), Message{Kind: KindMembershipPaid, Destination: "a@x.com", Body: "paid"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "kind=membership_payment")
	require.Contains(t, buf.String(), "destination=a@x.com")
}

func TestNilLoggerNotifierIsNoop(t *testing.T) {
	var n *LoggerNotifier
	require.NoError(t, n.Send(context.Background(), Message{Kind: KindMembershipPaid}))
}
