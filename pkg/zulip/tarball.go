// Copyright 2024-2026 Aiku AI

package zulip

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Package compresses dir into <dir>.tar.gz, with entries rooted at the
// directory's base name, and returns the archive path.
func Package(ctx context.Context, dir string) (string, error) {
	dir = filepath.Clean(dir)
	archivePath := dir + ".tar.gz"
	file, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	if err = writeArchive(ctx, dir, file); err != nil {
		return "", err
	}
	return archivePath, nil
}

// writeArchive streams dir as a gzipped tar into out and closes out. The
// archive is only complete if closing out succeeds.
func writeArchive(ctx context.Context, dir string, out io.WriteCloser) error {
	err := writeTarGz(ctx, dir, out)
	closeErr := out.Close()
	if err != nil {
		return err
	} else if closeErr != nil {
		return fmt.Errorf("failed to close archive: %w", closeErr)
	}
	return nil
}

func writeTarGz(ctx context.Context, dir string, out io.Writer) error {
	gz, err := gzip.NewWriterLevel(out, gzip.DefaultCompression)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	tw := tar.NewWriter(gz)
	base := filepath.Base(dir)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err = ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(filepath.Join(base, rel))
		if d.IsDir() {
			hdr.Name += "/"
		}
		if err = tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", dir, err)
	}
	if err = tw.Close(); err != nil {
		return fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err = gz.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}
