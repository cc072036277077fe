// SPDX-License-Identifier: MPL-2.0

package adapterssh

import (
	"context"
	"io"
	"os"

	"github.com/pkg/sftp"

	"github.com/xec-sh/xec/internal/xecore"
)

// sftpWriter adapts an *sftp.Client to internal/secure.RemoteFileWriter, so
// the askpass session can materialize and remove its helper script over
// the same connection a Request runs commands on, without the secure
// package importing anything transport-specific.
type sftpWriter struct {
	client *sftp.Client
}

func (w *sftpWriter) WriteFile(ctx context.Context, path string, content []byte, mode uint32) error {
	f, err := w.client.Create(path)
	if err != nil {
		return &xecore.TransferFailedError{Dest: path, Err: err}
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		return &xecore.TransferFailedError{Dest: path, Err: err}
	}
	if err := w.client.Chmod(path, os.FileMode(mode)); err != nil {
		return &xecore.TransferFailedError{Dest: path, Err: err}
	}
	return nil
}

func (w *sftpWriter) Remove(ctx context.Context, path string) error {
	if err := w.client.Remove(path); err != nil {
		return &xecore.TransferFailedError{Source: path, Err: err}
	}
	return nil
}

// upload writes local content to a remote path, preserving mode.
func upload(client *sftp.Client, localPath, remotePath string, mode os.FileMode) error {
	src, err := os.Open(localPath)
	if err != nil {
		return &xecore.TransferFailedError{Source: localPath, Dest: remotePath, Err: err}
	}
	defer src.Close()

	dst, err := client.Create(remotePath)
	if err != nil {
		return &xecore.TransferFailedError{Source: localPath, Dest: remotePath, Err: err}
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return &xecore.TransferFailedError{Source: localPath, Dest: remotePath, Err: err}
	}
	if err := client.Chmod(remotePath, mode); err != nil {
		return &xecore.TransferFailedError{Source: localPath, Dest: remotePath, Err: err}
	}
	return nil
}

// download reads a remote path into a local file, preserving mode.
func download(client *sftp.Client, remotePath, localPath string) error {
	src, err := client.Open(remotePath)
	if err != nil {
		return &xecore.TransferFailedError{Source: remotePath, Dest: localPath, Err: err}
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return &xecore.TransferFailedError{Source: remotePath, Dest: localPath, Err: err}
	}

	dst, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return &xecore.TransferFailedError{Source: remotePath, Dest: localPath, Err: err}
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return &xecore.TransferFailedError{Source: remotePath, Dest: localPath, Err: err}
	}
	return nil
}
