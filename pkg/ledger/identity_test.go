package ledger

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestMSP lays out a minimal MSP directory with a self-signed ECDSA
// certificate and its PKCS#8 private key, mirroring what Fabric enrollment
// produces.
func writeTestMSP(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "lab-gw"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	mspPath := t.TempDir()
	signcerts := filepath.Join(mspPath, "signcerts")
	keystore := filepath.Join(mspPath, "keystore")
	require.NoError(t, os.MkdirAll(signcerts, 0o755))
	require.NoError(t, os.MkdirAll(keystore, 0o755))

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	require.NoError(t, os.WriteFile(filepath.Join(signcerts, "cert.pem"), certPEM, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(keystore, "priv_sk"), keyPEM, 0o600))

	return mspPath
}

func TestNewIdentity(t *testing.T) {
	cfg := ChainConfig{MSPID: "LabOrgMSP", MSPPath: writeTestMSP(t)}

	id, err := newIdentity(cfg)
	require.NoError(t, err)
	assert.Equal(t, "LabOrgMSP", id.MspID())
}

func TestNewSign(t *testing.T) {
	cfg := ChainConfig{MSPID: "LabOrgMSP", MSPPath: writeTestMSP(t)}

	sign, err := newSign(cfg)
	require.NoError(t, err)

	sig, err := sign([]byte("digest-to-sign"))
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
}

func TestNewIdentity_MissingMaterial(t *testing.T) {
	cfg := ChainConfig{MSPID: "LabOrgMSP", MSPPath: filepath.Join(t.TempDir(), "absent")}

	_, err := newIdentity(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = newSign(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestNewIdentity_GarbageCertificate(t *testing.T) {
	mspPath := t.TempDir()
	signcerts := filepath.Join(mspPath, "signcerts")
	require.NoError(t, os.MkdirAll(signcerts, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(signcerts, "cert.pem"), []byte("not a pem"), 0o644))

	_, err := newIdentity(ChainConfig{MSPID: "LabOrgMSP", MSPPath: mspPath})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestFirstFile_EmptyDir(t *testing.T) {
	_, err := firstFile(t.TempDir())
	assert.Error(t, err)
}
