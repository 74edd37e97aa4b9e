package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperledger/fabric-gateway/pkg/identity"
)

// firstFile reads the first regular file in dir. Fabric MSP directories hold
// exactly one certificate or key, but the filename is enrollment-specific.
func firstFile(dir string) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		return os.ReadFile(filepath.Join(dir, entry.Name()))
	}
	return nil, fmt.Errorf("no files in %s", dir)
}

// newIdentity loads the chain's X.509 gateway identity from
// MSPPath/signcerts.
func newIdentity(cfg ChainConfig) (*identity.X509Identity, error) {
	pem, err := firstFile(filepath.Join(cfg.MSPPath, "signcerts"))
	if err != nil {
		return nil, fmt.Errorf("%w: read signing certificate: %v", ErrAuthFailed, err)
	}
	cert, err := identity.CertificateFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("%w: parse signing certificate: %v", ErrAuthFailed, err)
	}
	id, err := identity.NewX509Identity(cfg.MSPID, cert)
	if err != nil {
		return nil, fmt.Errorf("%w: build identity: %v", ErrAuthFailed, err)
	}
	return id, nil
}

// newSign loads the chain's private signing key from MSPPath/keystore.
func newSign(cfg ChainConfig) (identity.Sign, error) {
	pem, err := firstFile(filepath.Join(cfg.MSPPath, "keystore"))
	if err != nil {
		return nil, fmt.Errorf("%w: read private key: %v", ErrAuthFailed, err)
	}
	key, err := identity.PrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", ErrAuthFailed, err)
	}
	sign, err := identity.NewPrivateKeySign(key)
	if err != nil {
		return nil, fmt.Errorf("%w: build signer: %v", ErrAuthFailed, err)
	}
	return sign, nil
}
