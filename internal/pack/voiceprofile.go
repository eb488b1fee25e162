package pack

import "github.com/tgeczy/speechbox/internal/frame"

// ClassScale is a multiplicative adjustment applied to every phoneme of a
// given Class when a voice profile is active.
type ClassScale struct {
	CfMul         [6]float64
	PfMul         [6]float64
	CbMul         [6]float64
	PbMul         [6]float64
	VoicePitchMul float64
}

func neutralClassScale() ClassScale {
	cs := ClassScale{VoicePitchMul: 1.0}
	for i := range cs.CfMul {
		cs.CfMul[i] = 1.0
		cs.PfMul[i] = 1.0
		cs.CbMul[i] = 1.0
		cs.PbMul[i] = 1.0
	}
	return cs
}

// VoiceProfile rescales formants, bandwidths and pitch by phoneme class
// (e.g. to produce a different apparent speaker from the same phoneme
// table), then applies absolute per-phoneme overrides on top.
type VoiceProfile struct {
	Name              string
	ClassScales       map[Class]ClassScale
	PhonemeOverrides  map[string]map[string]float64
	VoicingTone       *frame.VoicingTone
}

// Apply scales f's cascade/parallel frequencies and bandwidths and voice
// pitch by the scale registered for class, then writes any absolute
// phonemeOverrides for key on top.
func (vp *VoiceProfile) Apply(key string, class Class, f *frame.Frame) {
	if vp == nil {
		return
	}
	if cs, ok := vp.ClassScales[class]; ok {
		f.Cf1 *= cs.CfMul[0]
		f.Cf2 *= cs.CfMul[1]
		f.Cf3 *= cs.CfMul[2]
		f.Cf4 *= cs.CfMul[3]
		f.Cf5 *= cs.CfMul[4]
		f.Cf6 *= cs.CfMul[5]
		f.Cb1 *= cs.CbMul[0]
		f.Cb2 *= cs.CbMul[1]
		f.Cb3 *= cs.CbMul[2]
		f.Cb4 *= cs.CbMul[3]
		f.Cb5 *= cs.CbMul[4]
		f.Cb6 *= cs.CbMul[5]
		f.Pf1 *= cs.PfMul[0]
		f.Pf2 *= cs.PfMul[1]
		f.Pf3 *= cs.PfMul[2]
		f.Pf4 *= cs.PfMul[3]
		f.Pf5 *= cs.PfMul[4]
		f.Pf6 *= cs.PfMul[5]
		f.Pb1 *= cs.PbMul[0]
		f.Pb2 *= cs.PbMul[1]
		f.Pb3 *= cs.PbMul[2]
		f.Pb4 *= cs.PbMul[3]
		f.Pb5 *= cs.PbMul[4]
		f.Pb6 *= cs.PbMul[5]
		f.VoicePitch *= cs.VoicePitchMul
		f.EndVoicePitch *= cs.VoicePitchMul
	}
	if overrides, ok := vp.PhonemeOverrides[key]; ok {
		v := f.Fields()
		for name, val := range overrides {
			if i, ok := fieldIndex[name]; ok {
				v[i] = val
			}
		}
		f.SetFields(v)
	}
}
