//go:build unit

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mentor-booking/internal/domain/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignWebhookCmd(t *testing.T) {
	body := []byte(`{"order_id":"MB261016101500ABCDEF","status":"CHARGED"}`)

	t.Run("signs a file with the flag secret", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "body.json")
		require.NoError(t, os.WriteFile(path, body, 0o600))

		var out bytes.Buffer
		cmd := signWebhookCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--secret", "s3cret", path})

		require.NoError(t, cmd.Execute())
		sig := strings.TrimSpace(out.String())
		assert.Equal(t, payment.Sign("s3cret", body), sig)
		assert.NoError(t, payment.VerifySignature("s3cret", body, sig))
	})

	t.Run("reads stdin and falls back to the environment", func(t *testing.T) {
		t.Setenv("WEBHOOK_SECRET", "from-env")

		var out bytes.Buffer
		cmd := signWebhookCmd()
		cmd.SetOut(&out)
		cmd.SetIn(bytes.NewReader(body))
		cmd.SetArgs([]string{})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, payment.Sign("from-env", body), strings.TrimSpace(out.String()))
	})

	t.Run("no secret is an error", func(t *testing.T) {
		t.Setenv("WEBHOOK_SECRET", "")

		cmd := signWebhookCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetIn(bytes.NewReader(body))
		cmd.SetArgs([]string{})

		assert.ErrorContains(t, cmd.Execute(), "no secret")
	})
}

func TestReconcileCmdArgs(t *testing.T) {
	cmd := reconcileCmd()

	assert.Error(t, cmd.Args(cmd, nil), "order id required without --stale")
	assert.NoError(t, cmd.Args(cmd, []string{"MB261016101500ABCDEF"}))

	require.NoError(t, cmd.Flags().Set("stale", "true"))
	assert.NoError(t, cmd.Args(cmd, nil))
	assert.Error(t, cmd.Args(cmd, []string{"MB261016101500ABCDEF"}))
}
