// Package signature identifies file types from the leading bytes of a file.
//
// Identification is best-effort: the header is compared against an ordered
// table of magic numbers and the first matching entry wins. When nothing
// matches, a simple printable-byte heuristic decides between Text and Unknown.
package signature

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// HeaderSize is the recommended number of leading bytes to pass to Identify.
const HeaderSize = 32

// textProbeSize is the number of leading bytes inspected by the text
// heuristic when no signature matches.
const textProbeSize = 16

const (
	// Unknown is returned when no signature matches and the header does not
	// look like text.
	Unknown = "Unknown"

	// Text is returned when no signature matches but the header consists
	// only of printable ASCII, tab, line feed and carriage return.
	Text = "Text"
)

// Entry is a single row of the signature table.
type Entry struct {
	// Prefix holds the exact leading bytes of the format.
	Prefix []byte

	// Label is the short type label reported by Identify.
	Label string

	// Description is a longer human readable name for the format.
	Description string
}

func hexEntry(prefix, label, description string) Entry {
	b, err := hex.DecodeString(prefix)
	if err != nil {
		panic("signature: bad prefix for " + label + ": " + err.Error())
	}
	return Entry{Prefix: b, Label: label, Description: description}
}

func literalEntry(prefix, label, description string) Entry {
	return Entry{Prefix: []byte(prefix), Label: label, Description: description}
}

/*
table is the ordered signature table. It is built once when the package is
initialised and never written afterwards, so concurrent lookups need no locking.

Order matters, because the first full prefix match wins: an entry must never
come after a shorter entry whose prefix is a prefix of its own, otherwise the
shorter, more general signature would pre-empt it. Entries with identical
prefixes (such as Mach-O fat binaries and Java class files) keep the order
below, which decides the reported label.
*/
var table = []Entry{
	// images
	hexEntry("ffd8ff", "JPEG", "JPEG image"),
	hexEntry("89504e470d0a1a0a", "PNG", "PNG image"),
	literalEntry("GIF87a", "GIF", "GIF image (87a)"),
	literalEntry("GIF89a", "GIF", "GIF image (89a)"),
	hexEntry("49492a00", "TIFF", "TIFF image (little-endian)"),
	hexEntry("4d4d002a", "TIFF", "TIFF image (big-endian)"),
	hexEntry("00000100", "ICO", "Windows icon"),
	literalEntry("8BPS", "PSD", "Photoshop document"),
	literalEntry("BM", "BMP", "Windows bitmap"),

	// audio and video
	literalEntry("ID3", "MP3", "MP3 audio with ID3v2 tag"),
	hexEntry("fffb", "MP3", "MP3 audio (MPEG-1 Layer 3)"),
	literalEntry("OggS", "OGG", "Ogg container"),
	literalEntry("fLaC", "FLAC", "FLAC audio"),
	hexEntry("1a45dfa3", "MATROSKA", "Matroska/WebM container"),
	literalEntry("FLV\x01", "FLV", "Flash video"),
	literalEntry("RIFF", "RIFF", "RIFF container (WAV, AVI, WebP)"),

	// archives and compression
	hexEntry("504b0304", "ZIP", "ZIP archive"),
	hexEntry("504b0506", "ZIP", "ZIP archive (empty)"),
	hexEntry("504b0708", "ZIP", "ZIP archive (spanned)"),
	hexEntry("526172211a070100", "RAR", "RAR archive (v5)"),
	hexEntry("526172211a0700", "RAR", "RAR archive (v1.5-4)"),
	hexEntry("377abcaf271c", "7Z", "7-Zip archive"),
	hexEntry("1f8b", "GZIP", "gzip compressed data"),
	literalEntry("BZh", "BZIP2", "bzip2 compressed data"),
	hexEntry("fd377a585a00", "XZ", "xz compressed data"),
	hexEntry("28b52ffd", "ZSTD", "Zstandard compressed data"),
	hexEntry("04224d18", "LZ4", "LZ4 frame"),
	literalEntry("MSCF", "CAB", "Microsoft Cabinet archive"),
	literalEntry("!<arch>\n", "AR", "Unix ar archive (deb)"),
	hexEntry("edabeedb", "RPM", "RPM package"),

	// documents
	literalEntry("%PDF-", "PDF", "PDF document"),
	hexEntry("d0cf11e0a1b11ae1", "OLE2", "Microsoft compound document (doc, xls, msi)"),
	literalEntry("{\\rtf", "RTF", "Rich Text Format document"),
	literalEntry("%!PS", "POSTSCRIPT", "PostScript document"),

	// executables and bytecode
	hexEntry("7f454c46", "ELF", "ELF executable"),
	literalEntry("MZ", "PE", "DOS/Windows executable"),
	hexEntry("cafebabe", "MACHO", "Mach-O universal binary or Java class"),
	hexEntry("feedface", "MACHO", "Mach-O binary (32-bit)"),
	hexEntry("feedfacf", "MACHO", "Mach-O binary (64-bit)"),
	hexEntry("cefaedfe", "MACHO", "Mach-O binary (32-bit, reversed)"),
	hexEntry("cffaedfe", "MACHO", "Mach-O binary (64-bit, reversed)"),
	literalEntry("dex\n", "DEX", "Android Dalvik executable"),
	hexEntry("0061736d", "WASM", "WebAssembly module"),

	// databases and fonts
	literalEntry("SQLite format 3\x00", "SQLITE", "SQLite database"),
	literalEntry("wOFF", "WOFF", "Web Open Font"),
	literalEntry("wOF2", "WOFF2", "Web Open Font 2"),
	literalEntry("OTTO", "OTF", "OpenType font"),

	// text-based containers
	literalEntry("<?xml", "XML", "XML document"),
	literalEntry("<svg", "SVG", "SVG image"),
	literalEntry("<!DOCTYPE html", "HTML", "HTML document"),
	literalEntry("<!doctype html", "HTML", "HTML document"),
	literalEntry("<html", "HTML", "HTML document"),
	literalEntry("-----BEGIN ", "PEM", "PEM encoded key or certificate"),
	literalEntry("#!/bin/sh", "SHELL", "POSIX shell script"),
	literalEntry("#!/bin/bash", "SHELL", "Bash script"),
	literalEntry("#!/usr/bin/env python", "PYTHON", "Python script"),
	literalEntry("#!/usr/bin/python", "PYTHON", "Python script"),
	literalEntry("#!", "SCRIPT", "Script with interpreter line"),
}

func (e Entry) clone() Entry {
	e.Prefix = bytes.Clone(e.Prefix)
	return e
}

// Table returns a copy of the signature table, in match order.
func Table() []Entry {
	out := make([]Entry, len(table))
	for i, e := range table {
		out[i] = e.clone()
	}
	return out
}

/*
Identify returns the type label for a file whose leading bytes are header.
HeaderSize bytes are enough for every entry in the table; shorter headers are
accepted, and signatures longer than the header simply do not match.

If no signature matches, the first 16 bytes (or fewer, for a shorter header)
are inspected: if every one is printable ASCII (32-126) or a tab, line feed or
carriage return, the label is Text, otherwise Unknown. An empty header has
no unprintable byte and is Text.

Identify is a pure function: the same header always yields the same label.
*/
func Identify(header []byte) string {
	if e, ok := Match(header); ok {
		return e.Label
	}
	if looksLikeText(header) {
		return Text
	}
	return Unknown
}

// Match returns the first table entry whose prefix header starts with.
func Match(header []byte) (Entry, bool) {
	for _, e := range table {
		if bytes.HasPrefix(header, e.Prefix) {
			return e.clone(), true
		}
	}
	return Entry{}, false
}

func looksLikeText(header []byte) bool {
	if len(header) > textProbeSize {
		header = header[:textProbeSize]
	}
	for _, b := range header {
		if !IsPrintable(b) {
			return false
		}
	}
	return true
}

// IsPrintable reports whether b is printable ASCII (32-126), or one of the
// whitespace control codes tab, line feed and carriage return.
func IsPrintable(b byte) bool {
	return (b >= 32 && b <= 126) || b == '\t' || b == '\n' || b == '\r'
}

// Lookup returns the first table entry with the given label, compared
// case-insensitively.
func Lookup(label string) (Entry, bool) {
	for _, e := range table {
		if strings.EqualFold(e.Label, label) {
			return e.clone(), true
		}
	}
	return Entry{}, false
}

/*
Closest returns the table label nearest to a declared type, together with
its Levenshtein distance. The declared type is lowercased and split on '/',
'.', '-', '+' and ';' so that MIME types ("image/x-png") and file names
("photo.JPG") are compared by their parts. An empty declared type returns an
empty label and a distance of -1.
*/
func Closest(declared string) (string, int) {
	parts := strings.FieldsFunc(strings.ToLower(declared), func(r rune) bool {
		return r == '/' || r == '.' || r == '-' || r == '+' || r == ';' || r == ' '
	})
	if len(parts) == 0 {
		return "", -1
	}

	bestLabel, bestDist := "", -1
	for _, e := range table {
		label := []rune(strings.ToLower(e.Label))
		for _, part := range parts {
			d := levenshtein.DistanceForStrings(label, []rune(part), levenshtein.DefaultOptions)
			if bestDist < 0 || d < bestDist {
				bestLabel, bestDist = e.Label, d
			}
		}
	}
	return bestLabel, bestDist
}
