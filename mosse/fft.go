package mosse

import "gonum.org/v1/gonum/dsp/fourier"

// fft2 computes two dimensional discrete Fourier transforms of row major
// complex planes by applying one dimensional transforms to every row and then
// every column.  Neither direction is normalized.
type fft2 struct {
	width  int
	height int
	rows   *fourier.CmplxFFT
	cols   *fourier.CmplxFFT
}

// newFFT2 returns a transform for planes of the given size
func newFFT2(width, height int) *fft2 {
	return &fft2{
		width:  width,
		height: height,
		rows:   fourier.NewCmplxFFT(width),
		cols:   fourier.NewCmplxFFT(height),
	}
}

// forward returns the Fourier coefficients of src
func (f *fft2) forward(src []complex128) []complex128 {
	return f.transform(src, false)
}

// inverse returns the periodic sequence of the coefficients in src
func (f *fft2) inverse(src []complex128) []complex128 {
	return f.transform(src, true)
}

func (f *fft2) transform(src []complex128, inverse bool) []complex128 {

	out := make([]complex128, len(src))
	row := make([]complex128, f.width)

	for y := 0; y < f.height; y++ {
		seq := src[y*f.width : (y+1)*f.width]

		if inverse {
			f.rows.Sequence(row, seq)
		} else {
			f.rows.Coefficients(row, seq)
		}

		copy(out[y*f.width:(y+1)*f.width], row)
	}

	col := make([]complex128, f.height)
	res := make([]complex128, f.height)

	for x := 0; x < f.width; x++ {
		for y := 0; y < f.height; y++ {
			col[y] = out[y*f.width+x]
		}

		if inverse {
			f.cols.Sequence(res, col)
		} else {
			f.cols.Coefficients(res, col)
		}

		for y := 0; y < f.height; y++ {
			out[y*f.width+x] = res[y]
		}
	}

	return out
}
