// Package audio decodes PCM WAV files into mono float64 samples for chart
// generation and probes music files for their duration.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrNotWAV = errors.New("not a PCM WAV file")

// Info describes a decoded WAV stream.
type Info struct {
	SampleRate  int
	NumChannels int
	BitDepth    int
	Duration    time.Duration
}

// Probe reads the WAV header of path without decoding samples.
func Probe(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ProbeReader(f)
}

// ProbeReader is Probe for an already opened stream.
func ProbeReader(r io.ReadSeeker) (*Info, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWAV
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("seeking to PCM data: %w", err)
	}
	// Decoder.Duration counts the whole RIFF chunk, headers included
	frameBytes := int64(dec.NumChans) * int64(dec.BitDepth/8)
	if frameBytes == 0 || dec.SampleRate == 0 {
		return nil, ErrNotWAV
	}
	frames := int64(dec.PCMSize) / frameBytes
	return &Info{
		SampleRate:  int(dec.SampleRate),
		NumChannels: int(dec.NumChans),
		BitDepth:    int(dec.BitDepth),
		Duration:    time.Duration(frames) * time.Second / time.Duration(dec.SampleRate),
	}, nil
}

// ReadMonoFloat64 decodes a PCM WAV file and returns mono samples in [-1, 1]
// and the sample rate. Multi-channel audio is averaged down to one channel.
func ReadMonoFloat64(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return DecodeMonoFloat64(f)
}

func DecodeMonoFloat64(r io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, ErrNotWAV
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding PCM: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return nil, 0, fmt.Errorf("decoding PCM: %w", ErrNotWAV)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}
	samples, err := toMono(buf.Data, buf.Format.NumChannels, bitDepth)
	if err != nil {
		return nil, 0, err
	}
	return samples, buf.Format.SampleRate, nil
}

func toMono(data []int, numChannels, bitDepth int) ([]float64, error) {
	if numChannels < 1 {
		return nil, fmt.Errorf("unsupported channel count %d", numChannels)
	}
	if bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	// 8-bit WAV is unsigned
	var offset int
	if bitDepth == 8 {
		offset = 128
	}

	frames := len(data) / numChannels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < numChannels; c++ {
			sum += float64(data[i*numChannels+c]-offset) * scale
		}
		out[i] = sum / float64(numChannels)
	}
	return out, nil
}

// WriteMonoWAV encodes samples in [-1, 1] as a 16-bit mono PCM WAV file.
func WriteMonoWAV(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("encoding PCM: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
