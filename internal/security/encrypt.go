// Package security seals exported scan reports with an age passphrase.
// A report lists where secrets live in a repository, so it is treated as
// sensitive itself.
package security

import (
	"bytes"
	"io"
	"os"

	"filippo.io/age"
	"filippo.io/age/armor"
	"github.com/cockroachdb/errors"
	"github.com/moby/sys/atomicwriter"

	"github.com/greyhatharold/QGit/internal/domain"
)

const ageArmorHeader = "-----BEGIN AGE ENCRYPTED FILE-----"

var (
	// ErrPassphraseRequired is returned when an encrypted report is read
	// without a passphrase.
	ErrPassphraseRequired = errors.New("report is encrypted")
	// ErrWrongPassphrase is returned when the passphrase does not open the report.
	ErrWrongPassphrase = errors.New("wrong passphrase")
)

// Encrypt seals data for passphrase as ASCII-armored age output.
func Encrypt(data []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, errors.Wrap(err, "creating scrypt recipient")
	}

	var buf bytes.Buffer
	armorWriter := armor.NewWriter(&buf)
	w, err := age.Encrypt(armorWriter, recipient)
	if err != nil {
		return nil, errors.Wrap(err, "initializing encryption")
	}
	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(err, "writing encrypted data")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "finalizing encryption")
	}
	if err := armorWriter.Close(); err != nil {
		return nil, errors.Wrap(err, "finalizing armor")
	}
	return buf.Bytes(), nil
}

// Decrypt opens armored age data with passphrase.
func Decrypt(data []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, errors.Wrap(err, "creating scrypt identity")
	}

	r, err := age.Decrypt(armor.NewReader(bytes.NewReader(data)), identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, errors.Mark(errors.Wrap(err, "decrypting report"), ErrWrongPassphrase)
		}
		return nil, errors.Wrap(err, "initializing decryption")
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading decrypted data")
	}
	return plain, nil
}

// IsEncrypted reports whether data starts with the age armor header.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte(ageArmorHeader))
}

// EncryptReport serializes r as a TOML manifest and seals it.
func EncryptReport(r *domain.ScanResult, version, passphrase string) ([]byte, error) {
	data, err := domain.MarshalReport(r, version)
	if err != nil {
		return nil, errors.Wrap(err, "encoding report")
	}
	return Encrypt(data, passphrase)
}

// ExportReport writes r to path, sealed when passphrase is set. The file is
// replaced atomically with mode 0600.
func ExportReport(r *domain.ScanResult, version, path, passphrase string) error {
	var (
		data []byte
		err  error
	)
	if passphrase == "" {
		data, err = domain.MarshalReport(r, version)
	} else {
		data, err = EncryptReport(r, version, passphrase)
	}
	if err != nil {
		return err
	}
	if err := atomicwriter.WriteFile(path, data, 0o600); err != nil {
		return domain.FileOperationError(path, err)
	}
	return nil
}

// ReadReport loads a report written by ExportReport. Plain reports ignore
// the passphrase.
func ReadReport(path, passphrase string) (*domain.ScanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if IsEncrypted(data) {
		if passphrase == "" {
			return nil, errors.WithHint(errors.Wrapf(ErrPassphraseRequired, "reading %s", path),
				"pass --passphrase or set QGIT_PASSPHRASE")
		}
		if data, err = Decrypt(data, passphrase); err != nil {
			return nil, err
		}
	}
	r, err := domain.UnmarshalReport(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return r, nil
}

// DecryptFile opens the sealed src and writes the plain TOML to dst.
func DecryptFile(src, dst, passphrase string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, "reading %s", src)
	}
	if !IsEncrypted(data) {
		return errors.Newf("%s is not an age encrypted file", src)
	}
	plain, err := Decrypt(data, passphrase)
	if err != nil {
		return err
	}
	if err := atomicwriter.WriteFile(dst, plain, 0o600); err != nil {
		return domain.FileOperationError(dst, err)
	}
	return nil
}
