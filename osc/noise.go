package osc

// LFSR is a 16-bit linear feedback shift register. Every clock, the XOR of
// bit 0 and the tap bit is shifted in from the top.
type LFSR uint16

// LFSRSeed is the initial state of the register for every note.
const LFSRSeed LFSR = 0xFFFF

// Clock advances the register by one step, using bit tap (1..15) as the
// second feedback bit.
func (r *LFSR) Clock(tap int) {
	bit := (*r ^ (*r >> uint(tap))) & 1
	*r = (*r >> 1) | (bit << 15)
}

// High reports whether the output bit (bit 0) is set.
func (r LFSR) High() bool {
	return r&1 == 1
}

// noise appends n samples to dst. Each frequency drives its own register: it
// is clocked once every time its phase crosses from below 0.5 to 0.5 or
// above. The output is read before clocking. With several frequencies, the
// outputs are averaged like with the square wave.
func noise(dst []int8, freqs []float64, tap int, n int, vol Ramp) []int8 {
	regs := make([]LFSR, len(freqs))
	phases := make([]float64, len(freqs))
	for k := range regs {
		regs[k] = LFSRSeed
	}
	count := float64(len(freqs))
	for i := 0; i < n; i++ {
		v := float64(vol.At(i, n))
		sum := 0.0
		for k, f := range freqs {
			if regs[k].High() {
				sum += v
			} else {
				sum -= v
			}
			prev := phases[k]
			phases[k] = advance(prev, step(f))
			if prev < 0.5 && phases[k] >= 0.5 {
				regs[k].Clock(tap)
			}
		}
		dst = append(dst, toSample(sum/count))
	}
	return dst
}
