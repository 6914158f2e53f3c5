package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	wavSampleRate    = 16000
	wavChannels      = 1
	wavBitsPerSample = 16
)

// EncodeWAV wraps signed 16-bit little-endian PCM samples in a minimal
// RIFF/WAVE container at 16 kHz mono, matching the on-disk format required
// by every Recognizer backend.
func EncodeWAV(pcm []byte) []byte {
	header := wavHeader(len(pcm))
	out := make([]byte, 0, len(header)+len(pcm))
	out = append(out, header...)
	out = append(out, pcm...)
	return out
}

func wavHeader(dataSize int) []byte {
	byteRate := wavSampleRate * wavChannels * (wavBitsPerSample / 8)
	blockAlign := wavChannels * (wavBitsPerSample / 8)

	buf := make([]byte, 44)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(buf[22:24], wavChannels)
	binary.LittleEndian.PutUint32(buf[24:28], wavSampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], wavBitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	return buf
}

// WavWriter incrementally builds a 16 kHz mono 16-bit WAV file, used by the
// AudioCapture writer worker and by file import so neither has to buffer the
// entire recording in memory before writing the header.
type WavWriter struct {
	f         *os.File
	dataBytes int64
}

// CreateWavWriter creates (or truncates) path and reserves space for the
// 44-byte header, to be patched in on Close once the final size is known.
func CreateWavWriter(path string) (*WavWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("audio: create wav %q: %w", path, err)
	}
	if _, err := f.Write(make([]byte, 44)); err != nil {
		f.Close()
		return nil, fmt.Errorf("audio: reserve wav header %q: %w", path, err)
	}
	return &WavWriter{f: f}, nil
}

// Write appends signed 16-bit little-endian PCM samples to the file.
func (w *WavWriter) Write(pcm []byte) error {
	n, err := w.f.Write(pcm)
	w.dataBytes += int64(n)
	if err != nil {
		return fmt.Errorf("audio: write wav data: %w", err)
	}
	return nil
}

// Close patches the RIFF/WAVE header with the final data size and closes the
// underlying file.
func (w *WavWriter) Close() error {
	header := wavHeader(int(w.dataBytes))
	if _, err := w.f.WriteAt(header, 0); err != nil {
		w.f.Close()
		return fmt.Errorf("audio: patch wav header: %w", err)
	}
	return w.f.Close()
}

// Abort closes and removes a partially written WAV file, used when file
// import is cancelled mid-decode.
func (w *WavWriter) Abort(path string) {
	w.f.Close()
	os.Remove(path)
}

// WavHeaderInfo is the subset of a WAV header's fields the pipeline needs to
// compute duration and validate the fast-import path, per spec §4.9 step 1
// and §4.11's fast path.
type WavHeaderInfo struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
	ByteRate      uint32
	DataSize      uint32
	FileSize      int64
}

// ReadWavHeaderInfo parses the fixed-offset fields of a canonical 44-byte WAV
// header: sample rate at bytes 24-27, byte rate at bytes 28-31, exactly as
// spec §4.9 step 1 specifies.
func ReadWavHeaderInfo(r io.ReadSeeker) (WavHeaderInfo, error) {
	var info WavHeaderInfo

	header := make([]byte, 44)
	if _, err := io.ReadFull(r, header); err != nil {
		return info, fmt.Errorf("audio: read wav header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return info, fmt.Errorf("audio: not a RIFF/WAVE file")
	}

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return info, fmt.Errorf("audio: seek wav: %w", err)
	}
	info.FileSize = size

	info.Channels = binary.LittleEndian.Uint16(header[22:24])
	info.SampleRate = binary.LittleEndian.Uint32(header[24:28])
	info.ByteRate = binary.LittleEndian.Uint32(header[28:32])
	info.BitsPerSample = binary.LittleEndian.Uint16(header[34:36])
	info.DataSize = binary.LittleEndian.Uint32(header[40:44])
	return info, nil
}

// IsCanonical16kMono16Bit reports whether info describes the exact on-disk
// format every Recognizer expects: 16 kHz, mono, 16-bit PCM.
func (info WavHeaderInfo) IsCanonical16kMono16Bit() bool {
	return info.SampleRate == wavSampleRate && info.Channels == wavChannels && info.BitsPerSample == wavBitsPerSample
}

// DurationSeconds computes duration from file size and byte rate, per spec
// §4.9 step 1: duration = max(0, file_size-44) / byte_rate.
func (info WavHeaderInfo) DurationSeconds() float64 {
	if info.ByteRate == 0 {
		return 0
	}
	dataBytes := info.FileSize - 44
	if dataBytes < 0 {
		dataBytes = 0
	}
	return float64(dataBytes) / float64(info.ByteRate)
}

// ReadWavPCM reads the raw PCM data bytes and header info from a WAV file at
// path. It does not require the canonical 16kHz mono 16-bit format; callers
// that need that format check IsCanonical16kMono16Bit themselves.
func ReadWavPCM(path string) ([]byte, WavHeaderInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WavHeaderInfo{}, fmt.Errorf("audio: open wav %q: %w", path, err)
	}
	defer f.Close()

	info, err := ReadWavHeaderInfo(f)
	if err != nil {
		return nil, WavHeaderInfo{}, err
	}
	if _, err := f.Seek(44, io.SeekStart); err != nil {
		return nil, WavHeaderInfo{}, fmt.Errorf("audio: seek wav data %q: %w", path, err)
	}
	data := make([]byte, info.DataSize)
	if _, err := io.ReadFull(f, data); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, WavHeaderInfo{}, fmt.Errorf("audio: read wav data %q: %w", path, err)
	}
	return data, info, nil
}
