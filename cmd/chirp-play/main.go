package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vsariola/chirp"
	"github.com/vsariola/chirp/compiler"
	"github.com/vsariola/chirp/meter"
	"github.com/vsariola/chirp/oto"
	"github.com/vsariola/chirp/player"
	"github.com/vsariola/chirp/version"
	"github.com/vsariola/chirp/wav"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to write the .wav files. The directory and its parents are created if needed. By default, the files are placed in the current working directory.")
	play := flag.Bool("p", false, "Play the input songs (default behaviour when no other output is defined).")
	wavOut := flag.Bool("w", false, "Write every channel of the song into its own 16-bit .wav file, named <song>-<channel>.wav.")
	meters := flag.Bool("m", false, "Print the peak and RMS level of every channel after playing.")
	queue := flag.Int("q", oto.DefaultQueueChunks, "Number of chunks queued for each audio device before it reports busy.")
	timeout := flag.Duration("t", 0, "Give up on a song if it has not finished in this time. 0 means wait forever, even for a stalled device.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*wavOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	logger := log.New(os.Stderr, "", 0)
	var audioContext *oto.Context
	if *play {
		var err error
		audioContext, err = oto.NewContext()
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto context: %v\n", err)
			os.Exit(1)
		}
	}
	process := func(filename string) error {
		f, err := os.Open(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		song, err := chirp.ReadSong(f)
		f.Close()
		if err != nil {
			return err
		}
		prog, err := compiler.Song(song)
		if err != nil {
			return err
		}
		indices := song.Indices()
		if len(indices) == 0 {
			return nil
		}
		_, name := filepath.Split(filename)
		name = strings.TrimSuffix(name, filepath.Ext(name))
		dir := *directory
		if *wavOut && dir != "" {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
		}
		devices := make([]chirp.Device, max(indices[len(indices)-1], 0))
		var closers []chirp.DeviceCloser
		var drainers []*oto.Device
		var meterDevices []*meter.Device
		defer func() {
			for _, c := range closers {
				if err := c.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
				}
			}
		}()
		for _, index := range indices {
			if index < 1 {
				continue // PlaySong reports the bad index
			}
			var outs []chirp.Device
			if *play {
				d := audioContext.NewDevice(*queue)
				closers = append(closers, d)
				drainers = append(drainers, d)
				outs = append(outs, d)
			}
			if *wavOut {
				d, err := wav.Create(filepath.Join(dir, fmt.Sprintf("%s-%d.wav", name, index)))
				if err != nil {
					return err
				}
				closers = append(closers, d)
				outs = append(outs, d)
			}
			var dev chirp.Device = outs[0]
			if len(outs) > 1 {
				dev = player.Tee(outs...)
			}
			if *meters {
				m := meter.Wrap(dev)
				meterDevices = append(meterDevices, m)
				dev = m
			}
			devices[index-1] = dev
		}
		ctx := context.Background()
		if *timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, *timeout)
			defer cancel()
		}
		logger.Printf("%v: %d channel(s), %v", filename, len(indices), prog.Length().Round(time.Millisecond))
		if err := player.PlaySong(ctx, song, devices); err != nil {
			return fmt.Errorf("could not play song: %w", err)
		}
		for _, d := range drainers {
			if err := d.Drain(ctx); err != nil {
				return fmt.Errorf("could not drain audio device: %w", err)
			}
		}
		for i, m := range meterDevices {
			l := m.Levels()
			logger.Printf("channel %d: peak %.1f dB, rms %.1f dB, %d samples", indices[i], l.Peak, l.RMS, l.Samples)
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			var files []string
			for _, pattern := range []string{"*.yml", "*.yaml", "*.json"} {
				matches, err := filepath.Glob(filepath.Join(param, pattern))
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not glob the path %v for %v files: %v\n", param, pattern, err)
					retval = 1
					continue
				}
				files = append(files, matches...)
			}
			for _, file := range files {
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			if err := process(param); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Chirp command line utility for playing .yml/.json song files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
