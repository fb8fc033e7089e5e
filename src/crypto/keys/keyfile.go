package keys

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrKeyExists is returned by WriteKey when a key is already stored.
var ErrKeyExists = errors.New("key file already exists")

// PublicSuffix is appended to the key file name to get the file holding the
// compressed public key.
const PublicSuffix = ".pub"

// SimpleKeyfile stores a signing key as the hex dump of its scalar, in a file
// only readable by its owner. The matching public key, in the compressed hex
// form used for principals, is written next to it.
type SimpleKeyfile struct {
	l       sync.Mutex
	keyfile string
}

// NewSimpleKeyfile ...
func NewSimpleKeyfile(keyfile string) *SimpleKeyfile {
	return &SimpleKeyfile{
		keyfile: keyfile,
	}
}

// Path returns the location of the private key.
func (k *SimpleKeyfile) Path() string {
	return k.keyfile
}

// PublicPath returns the location of the public key.
func (k *SimpleKeyfile) PublicPath() string {
	return k.keyfile + PublicSuffix
}

// CheckFileInfo verifies that the file exists and has user permissions only.
func (k *SimpleKeyfile) CheckFileInfo() error {
	info, err := os.Stat(k.keyfile)
	if err != nil {
		return err
	}

	// group and other bits must be clear
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		return fmt.Errorf("key file permissions should exclude 'groups' and 'others'. Got %o", perm)
	}

	return nil
}

// ReadKey reads and parses the private key.
func (k *SimpleKeyfile) ReadKey() (*ecdsa.PrivateKey, error) {
	k.l.Lock()
	defer k.l.Unlock()

	if err := k.CheckFileInfo(); err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(k.keyfile)
	if err != nil {
		return nil, err
	}

	return ParsePrivateKeyHex(strings.TrimSpace(string(buf)))
}

// ReadPublicKey reads the public key written alongside the private key.
func (k *SimpleKeyfile) ReadPublicKey() (*ecdsa.PublicKey, error) {
	buf, err := os.ReadFile(k.PublicPath())
	if err != nil {
		return nil, err
	}
	return ParsePublicKeyHex(strings.TrimSpace(string(buf)))
}

// WriteKey writes the key pair. It never replaces an existing private key.
func (k *SimpleKeyfile) WriteKey(key *ecdsa.PrivateKey) error {
	k.l.Lock()
	defer k.l.Unlock()

	if err := os.MkdirAll(filepath.Dir(k.keyfile), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(k.keyfile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if os.IsExist(err) {
		return ErrKeyExists
	}
	if err != nil {
		return err
	}

	if _, err := f.WriteString(PrivateKeyHex(key)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.WriteFile(k.PublicPath(), []byte(PublicKeyHex(&key.PublicKey)), 0644)
}
