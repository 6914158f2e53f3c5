// Package fileimport converts an audio file (WAV, MP3, OGG Vorbis, FLAC)
// into the canonical 16kHz mono 16-bit PCM WAV every Recognizer backend
// expects. MP3, OGG Vorbis and FLAC inputs are decoded and resampled; a WAV
// input is accepted only when it is already 16kHz mono 16-bit PCM, in which
// case it is copied unchanged. Any other WAV layout is rejected with
// ErrUnsupportedFormat.
package fileimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
	"golang.org/x/sync/errgroup"

	pkgaudio "github.com/scribekey/scribekey/internal/audio"
	resample "github.com/scribekey/scribekey/pkg/audio"
)

// MaxFileSize rejects inputs larger than this, per spec §4.11.
const MaxFileSize = 500 * 1024 * 1024

// chunkSize is the number of source frames, downmixed to mono samples at the
// source rate, fed to the resampler per ProcessHighQuality call, per spec
// §4.11.
const chunkSize = 1024

// cancelCheckInterval is how often (in decoded packets) the decode loop
// checks ctx for cancellation, per spec §4.11.
const cancelCheckInterval = 50

const (
	targetSampleRate = 16000
	targetChannels   = 1
)

var (
	// ErrTooLarge is returned when the input file exceeds MaxFileSize.
	ErrTooLarge = errors.New("fileimport: file too large")
	// ErrUnsupportedFormat is returned when the file extension has no
	// registered decoder.
	ErrUnsupportedFormat = errors.New("fileimport: unsupported audio format")
	// ErrCancelled is returned when ctx is cancelled mid-decode; the partial
	// output file is removed before this error is returned.
	ErrCancelled = errors.New("fileimport: import cancelled")
)

// Result describes a completed import.
type Result struct {
	// OutputPath is the canonical 16kHz mono 16-bit WAV file written.
	OutputPath string
	// DurationSeconds is the decoded audio's duration.
	DurationSeconds float64
}

// sampleSource abstracts over the codec-specific decoders: each yields
// interleaved float32 samples in [-1, 1] at its own native rate/channel
// count, which Import resamples and downmixes to the canonical format.
type sampleSource interface {
	SampleRate() int
	Channels() int
	// ReadFrames reads up to len(buf) interleaved samples, returning how
	// many were read. Returns io.EOF (possibly with n > 0) at end of stream.
	ReadFrames(buf []float32) (int, error)
}

// Import reads srcPath (identified by its extension), decodes it, and
// writes a canonical 16kHz mono 16-bit WAV to dstPath. ctx cancellation is
// observed roughly every cancelCheckInterval decoded packets; on
// cancellation the partial dstPath is removed and ErrCancelled is returned.
func Import(ctx context.Context, srcPath, dstPath string) (Result, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return Result{}, fmt.Errorf("fileimport: stat %q: %w", srcPath, err)
	}
	if info.Size() > MaxFileSize {
		return Result{}, fmt.Errorf("%w: %q is %d bytes", ErrTooLarge, srcPath, info.Size())
	}

	if isCanonicalWav(srcPath) {
		return copyFastPath(srcPath, dstPath)
	}

	return decodePath(ctx, srcPath, dstPath)
}

// isCanonicalWav reports whether srcPath is already a 16kHz mono 16-bit PCM
// WAV file, letting Import skip decoding entirely.
func isCanonicalWav(srcPath string) bool {
	if strings.ToLower(filepath.Ext(srcPath)) != ".wav" {
		return false
	}
	f, err := os.Open(srcPath)
	if err != nil {
		return false
	}
	defer f.Close()
	header, err := pkgaudio.ReadWavHeaderInfo(f)
	if err != nil {
		return false
	}
	return header.IsCanonical16kMono16Bit()
}

// copyFastPath implements spec §4.11's fast path: the input is already
// canonical, so it is copied byte-for-byte and its duration read from its
// own header rather than recomputed.
func copyFastPath(srcPath, dstPath string) (Result, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return Result{}, fmt.Errorf("fileimport: open %q: %w", srcPath, err)
	}
	defer src.Close()

	header, err := pkgaudio.ReadWavHeaderInfo(src)
	if err != nil {
		return Result{}, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return Result{}, fmt.Errorf("fileimport: rewind %q: %w", srcPath, err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return Result{}, fmt.Errorf("fileimport: create %q: %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return Result{}, fmt.Errorf("fileimport: copy %q: %w", srcPath, err)
	}

	return Result{OutputPath: dstPath, DurationSeconds: header.DurationSeconds()}, nil
}

// decodePath implements spec §4.11's general path: probe by extension,
// build the matching sampleSource, then run the chunked decode loop.
func decodePath(ctx context.Context, srcPath, dstPath string) (Result, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return Result{}, fmt.Errorf("fileimport: open %q: %w", srcPath, err)
	}
	defer f.Close()

	src, err := openSampleSource(srcPath, f)
	if err != nil {
		return Result{}, err
	}

	writer, err := pkgaudio.CreateWavWriter(dstPath)
	if err != nil {
		return Result{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	var totalSourceFrames int64

	g.Go(func() error {
		n, err := runDecodeLoop(gctx, src, writer)
		totalSourceFrames = n
		return err
	})

	if err := g.Wait(); err != nil {
		writer.Abort(dstPath)
		if errors.Is(err, context.Canceled) {
			return Result{}, ErrCancelled
		}
		return Result{}, err
	}

	if err := writer.Close(); err != nil {
		return Result{}, err
	}

	duration := float64(totalSourceFrames) / float64(src.SampleRate())
	return Result{OutputPath: dstPath, DurationSeconds: duration}, nil
}

// runDecodeLoop drains src in chunkSize*channels blocks through a
// ProcessHighQuality-driven resampler, writing signed 16-bit mono output to
// writer, per spec §4.11's decode-loop algorithm. Returns the number of
// source frames decoded.
func runDecodeLoop(ctx context.Context, src sampleSource, writer *pkgaudio.WavWriter) (int64, error) {
	channels := src.Channels()
	resampler := resample.NewSincResampler(src.SampleRate(), targetSampleRate)

	blockFrames := chunkSize
	buf := make([]float32, blockFrames*channels)
	var accumulator []float32
	var totalFrames int64
	packets := 0

	drain := func(final bool) error {
		want := chunkSize
		for len(accumulator) >= want || (final && len(accumulator) > 0) {
			var block []float32
			if len(accumulator) >= want {
				block = accumulator[:want]
				accumulator = accumulator[want:]
			} else {
				// Zero-pad the final partial chunk, per spec §4.11.
				block = make([]float32, want)
				copy(block, accumulator)
				accumulator = nil
			}
			out := resampler.ProcessHighQuality(block, 1)
			if err := writer.Write(floatsToPCM16(out)); err != nil {
				return err
			}
			if !final {
				continue
			}
			if len(accumulator) == 0 {
				break
			}
		}
		return nil
	}

	for {
		packets++
		if packets%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return totalFrames, err
			}
		}

		n, readErr := src.ReadFrames(buf)
		if n > 0 {
			frames := n / channels
			totalFrames += int64(frames)
			mono := toMono(buf[:n], channels)
			accumulator = append(accumulator, mono...)
			if err := drain(false); err != nil {
				return totalFrames, err
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			if isSoftDecodeError(readErr) {
				continue
			}
			return totalFrames, fmt.Errorf("fileimport: decode: %w", readErr)
		}
	}

	if err := drain(true); err != nil {
		return totalFrames, err
	}
	tail := resampler.Flush()
	if len(tail) > 0 {
		if err := writer.Write(floatsToPCM16(tail)); err != nil {
			return totalFrames, err
		}
	}

	return totalFrames, nil
}

// isSoftDecodeError reports whether err is a recoverable per-packet decode
// error spec §4.11 says to log and skip rather than abort the whole import
// on. None of the wired pure-Go decoders (go-mp3, oggvorbis, mewkiz/flac)
// distinguish a soft per-frame error from a fatal stream error in their
// public API, so every mid-stream error here is treated as fatal; see
// DESIGN.md.
func isSoftDecodeError(err error) bool {
	return false
}

// toMono downmixes an interleaved float32 block by averaging channels.
func toMono(block []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(block))
		copy(out, block)
		return out
	}
	frames := len(block) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += block[i*channels+ch]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// floatsToPCM16 converts mono float32 samples in [-1, 1] to signed 16-bit
// little-endian PCM.
func floatsToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// openSampleSource probes srcPath's extension and builds the matching
// decoder, per spec §4.11's "probe with the file extension hint".
func openSampleSource(srcPath string, f *os.File) (sampleSource, error) {
	switch strings.ToLower(filepath.Ext(srcPath)) {
	case ".mp3":
		return newMP3Source(f)
	case ".flac":
		return newFLACSource(f)
	case ".ogg":
		return newOggVorbisSource(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(srcPath))
	}
}

type mp3Source struct {
	dec *mp3.Decoder
}

func newMP3Source(r io.Reader) (*mp3Source, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("fileimport: open mp3: %w", err)
	}
	return &mp3Source{dec: dec}, nil
}

func (s *mp3Source) SampleRate() int { return s.dec.SampleRate() }
func (s *mp3Source) Channels() int   { return 2 }

// ReadFrames reads go-mp3's interleaved 16-bit stereo PCM bytes and converts
// them to interleaved float32 in [-1, 1].
func (s *mp3Source) ReadFrames(buf []float32) (int, error) {
	raw := make([]byte, len(buf)*2)
	n, err := s.dec.Read(raw)
	samples := n / 2
	for i := 0; i < samples; i++ {
		v := int16(raw[i*2]) | int16(raw[i*2+1])<<8
		buf[i] = float32(v) / 32768
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return samples, fmt.Errorf("fileimport: read mp3: %w", err)
	}
	return samples, err
}

type oggSource struct {
	r *oggvorbis.Reader
}

func newOggVorbisSource(r io.Reader) (*oggSource, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("fileimport: open ogg vorbis: %w", err)
	}
	return &oggSource{r: dec}, nil
}

func (s *oggSource) SampleRate() int { return s.r.SampleRate() }
func (s *oggSource) Channels() int   { return s.r.Channels() }

func (s *oggSource) ReadFrames(buf []float32) (int, error) {
	n, err := s.r.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("fileimport: read ogg vorbis: %w", err)
	}
	return n, err
}

type flacSource struct {
	stream    *flac.Stream
	pending   []float32
	bitDepth  float32
	nchannels int
}

func newFLACSource(r io.Reader) (*flacSource, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("fileimport: open flac: %w", err)
	}
	full := float32(int64(1) << (stream.Info.BitsPerSample - 1))
	return &flacSource{
		stream:    stream,
		bitDepth:  full,
		nchannels: int(stream.Info.NChannels),
	}, nil
}

func (s *flacSource) SampleRate() int { return int(s.stream.Info.SampleRate) }
func (s *flacSource) Channels() int   { return s.nchannels }

// ReadFrames decodes FLAC frames (spanning multiple subframes/channels) into
// the caller's buffer, carrying over any samples that didn't fit in a
// previous call.
func (s *flacSource) ReadFrames(buf []float32) (int, error) {
	n := 0
	for n < len(buf) {
		if len(s.pending) > 0 {
			copied := copy(buf[n:], s.pending)
			s.pending = s.pending[copied:]
			n += copied
			continue
		}

		frame, err := s.stream.ParseNext()
		if err != nil {
			return n, err
		}

		nsamples := len(frame.Subframes[0].Samples)
		interleaved := make([]float32, nsamples*s.nchannels)
		for ch := 0; ch < s.nchannels && ch < len(frame.Subframes); ch++ {
			sub := frame.Subframes[ch]
			for i, sample := range sub.Samples {
				interleaved[i*s.nchannels+ch] = float32(sample) / s.bitDepth
			}
		}
		s.pending = interleaved
	}
	return n, nil
}
