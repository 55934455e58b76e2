package main

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/sha3"

	"github.com/Novlety/hdl/internal/workerpool"
	"github.com/Novlety/hdl/lane"
)

// startupGap covers the reset tick plus the longest warmup window, so the
// simulations below feed real stimulus only once the engines are steady.
const startupGap = 3

func simConfig() (lane.Config, error) {
	cfg := lane.Config{Channels: flagChannels, SamplesPerChannel: flagSamples}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	switch flagWidth {
	case 8, 16, 32, 64:
	default:
		return cfg, fmt.Errorf("unsupported sample width %d", flagWidth)
	}
	return cfg, nil
}

func parseMask(cfg lane.Config) (lane.ChannelMask, error) {
	if flagMask == "" {
		return lane.ChannelMask(1<<cfg.Channels - 1), nil
	}
	v, err := strconv.ParseUint(flagMask, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid mask %q: %w", flagMask, err)
	}
	m := lane.ChannelMask(v)
	if cfg.LaneMask(m).AllFalse() {
		return 0, fmt.Errorf("mask %q enables no channel", flagMask)
	}
	return m, nil
}

// stimulus derives one full-width lane vector from a SHA3 hash of the seed,
// mask and tick index, truncating each hash word to the sample width.
func stimulus[T lane.Sample](cfg lane.Config, mask lane.ChannelMask, seed, tick int) []T {
	var key [24]byte
	binary.LittleEndian.PutUint64(key[0:], uint64(seed))
	binary.LittleEndian.PutUint64(key[8:], uint64(mask))
	binary.LittleEndian.PutUint64(key[16:], uint64(tick))

	lanes := make([]T, cfg.Lanes())
	h := sha3.NewShake256()
	h.Write(key[:])
	buf := make([]byte, 8*len(lanes))
	h.Read(buf)
	for i := range lanes {
		lanes[i] = T(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return lanes
}

// packStream drives the pack engine over a deterministic stimulus stream and
// returns the consumed inputs and emitted packed words.
func packStream[T lane.Sample](cfg lane.Config, mask lane.ChannelMask, seed, ticks int) (inputs, words [][]T, err error) {
	p, err := lane.NewPacker[T](cfg)
	if err != nil {
		return nil, nil, err
	}
	for tick := 0; tick < startupGap+ticks; tick++ {
		in := stimulus[T](cfg, mask, seed, tick)
		// Hold WriteReq low through the startup window so the recorded
		// inputs line up one-to-one with packed groups.
		out := p.Tick(lane.PackIn[T]{Enable: mask, Lanes: in, WriteReq: tick >= startupGap})
		if tick >= startupGap {
			inputs = append(inputs, in)
		}
		if out.WriteEnable {
			words = append(words, out.Word)
		}
	}
	return inputs, words, nil
}

// unpackStream feeds packed words to the unpack engine until the stream is
// exhausted and returns the expanded lane vectors of all granted reads.
func unpackStream[T lane.Sample](cfg lane.Config, mask lane.ChannelMask, words [][]T) ([][]T, error) {
	u, err := lane.NewUnpacker[T](cfg)
	if err != nil {
		return nil, err
	}
	queue := words
	var got [][]T
	for tick := 0; tick < startupGap+2*len(words)*cfg.Lanes()+4; tick++ {
		in := lane.UnpackIn[T]{Enable: mask, ReadReq: true}
		if len(queue) > 0 {
			in.Word = queue[0]
			in.Valid = true
		}
		out := u.Tick(in)
		if out.Ready && in.Valid {
			queue = queue[1:]
		}
		if out.Valid {
			got = append(got, out.Lanes)
		}
	}
	return got, nil
}

// digest hashes a packed word stream into a short hex string.
func digest[T lane.Sample](words [][]T) string {
	h := sha3.New256()
	var buf [8]byte
	for _, w := range words {
		for _, s := range w {
			binary.LittleEndian.PutUint64(buf[:], uint64(s))
			h.Write(buf[:])
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}

func widen[T lane.Sample](w []T) []uint64 {
	out := make([]uint64, len(w))
	for i, s := range w {
		out[i] = uint64(s)
	}
	return out
}

type packReport struct {
	Channels int        `json:"channels"`
	Samples  int        `json:"samples_per_channel"`
	Width    int        `json:"sample_width_bits"`
	Mask     uint64     `json:"mask"`
	Ticks    int        `json:"ticks"`
	Words    [][]uint64 `json:"words"`
	Digest   string     `json:"digest"`
}

func runPackCmd(cmd *cobra.Command, args []string) error {
	cfg, err := simConfig()
	if err != nil {
		return err
	}
	mask, err := parseMask(cfg)
	if err != nil {
		return err
	}
	switch flagWidth {
	case 8:
		return packReportFor[uint8](cfg, mask)
	case 16:
		return packReportFor[uint16](cfg, mask)
	case 32:
		return packReportFor[uint32](cfg, mask)
	default:
		return packReportFor[uint64](cfg, mask)
	}
}

func packReportFor[T lane.Sample](cfg lane.Config, mask lane.ChannelMask) error {
	_, words, err := packStream[T](cfg, mask, flagSeed, flagTicks)
	if err != nil {
		return err
	}

	if flagJSON {
		rep := packReport{
			Channels: cfg.Channels,
			Samples:  cfg.SamplesPerChannel,
			Width:    lane.SampleBits[T](),
			Mask:     uint64(mask),
			Ticks:    flagTicks,
			Digest:   digest(words),
		}
		for _, w := range words {
			rep.Words = append(rep.Words, widen(w))
		}
		data, err := sonnet.Marshal(rep)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("config: N=%d S=%d W=%d mask=%b lanes=%d\n",
		cfg.Channels, cfg.SamplesPerChannel, lane.SampleBits[T](), mask, cfg.Lanes())
	for i, w := range words {
		fmt.Printf("word %3d: %v\n", i, widen(w))
	}
	fmt.Printf("words: %d  digest: %s\n", len(words), digest(words))
	return nil
}

type roundtripReport struct {
	Channels int    `json:"channels"`
	Samples  int    `json:"samples_per_channel"`
	Width    int    `json:"sample_width_bits"`
	Mask     uint64 `json:"mask"`
	Ticks    int    `json:"ticks"`
	Words    int    `json:"words"`
	Groups   int    `json:"groups"`
	Digest   string `json:"digest"`
	OK       bool   `json:"ok"`
}

func runRoundtripCmd(cmd *cobra.Command, args []string) error {
	cfg, err := simConfig()
	if err != nil {
		return err
	}
	mask, err := parseMask(cfg)
	if err != nil {
		return err
	}
	var rep roundtripReport
	switch flagWidth {
	case 8:
		rep, err = roundtripFor[uint8](cfg, mask, flagSeed, flagTicks)
	case 16:
		rep, err = roundtripFor[uint16](cfg, mask, flagSeed, flagTicks)
	case 32:
		rep, err = roundtripFor[uint32](cfg, mask, flagSeed, flagTicks)
	default:
		rep, err = roundtripFor[uint64](cfg, mask, flagSeed, flagTicks)
	}
	if err != nil {
		return err
	}

	if flagJSON {
		data, err := sonnet.Marshal(rep)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Printf("config: N=%d S=%d W=%d mask=%b\n", rep.Channels, rep.Samples, rep.Width, rep.Mask)
		fmt.Printf("ticks=%d words=%d groups=%d digest=%s ok=%v\n",
			rep.Ticks, rep.Words, rep.Groups, rep.Digest, rep.OK)
	}
	if !rep.OK {
		return fmt.Errorf("round trip mismatch for mask %b", mask)
	}
	return nil
}

func roundtripFor[T lane.Sample](cfg lane.Config, mask lane.ChannelMask, seed, ticks int) (roundtripReport, error) {
	rep := roundtripReport{
		Channels: cfg.Channels,
		Samples:  cfg.SamplesPerChannel,
		Width:    lane.SampleBits[T](),
		Mask:     uint64(mask),
		Ticks:    ticks,
	}

	inputs, words, err := packStream[T](cfg, mask, seed, ticks)
	if err != nil {
		return rep, err
	}
	got, err := unpackStream(cfg, mask, words)
	if err != nil {
		return rep, err
	}

	rep.Words = len(words)
	rep.Groups = len(got)
	rep.Digest = digest(words)
	rep.OK = verifyRoundtrip(cfg, mask, inputs, words, got)
	return rep, nil
}

// verifyRoundtrip checks that every fully packed group came back in order
// with disabled lanes zeroed.
func verifyRoundtrip[T lane.Sample](cfg lane.Config, mask lane.ChannelMask, inputs, words, got [][]T) bool {
	active := cfg.LaneMask(mask).CountTrue()
	if active == 0 {
		return len(words) == 0 && len(got) == 0
	}
	if len(got) != len(words)*cfg.Lanes()/active {
		return false
	}
	for i, lanes := range got {
		in := inputs[i]
		for l := range lanes {
			want := T(0)
			if mask.Enabled(l / cfg.SamplesPerChannel) {
				want = in[l]
			}
			if lanes[l] != want {
				return false
			}
		}
	}
	return true
}

func runSweepCmd(cmd *cobra.Command, args []string) error {
	cfg, err := simConfig()
	if err != nil {
		return err
	}

	masks := 1<<cfg.Channels - 1
	results := make([]roundtripReport, masks)
	errs := make([]error, masks)

	pool := workerpool.New(flagWorkers)
	defer pool.Close()

	pool.ParallelFor(masks, func(start, end int) {
		for i := start; i < end; i++ {
			mask := lane.ChannelMask(i + 1)
			results[i], errs[i] = roundtripFor[uint16](cfg, mask, flagSeed, flagTicks)
		}
	})

	failed := 0
	for i, rep := range results {
		if errs[i] != nil {
			return errs[i]
		}
		if !rep.OK {
			failed++
			fmt.Printf("FAIL mask=%b words=%d groups=%d\n", rep.Mask, rep.Words, rep.Groups)
		}
	}
	fmt.Printf("sweep: N=%d S=%d ticks=%d masks=%d failed=%d (%d workers)\n",
		cfg.Channels, cfg.SamplesPerChannel, flagTicks, masks, failed, pool.NumWorkers())
	if failed > 0 {
		return fmt.Errorf("%d masks failed", failed)
	}
	return nil
}
