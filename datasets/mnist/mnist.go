// Package mnist renders strings of handwritten MNIST digits, placing downscaled
// training digits side by side so the recognizer can learn to read them.
package mnist

import "bytes"
import "compress/gzip"
import "crypto/sha256"
import "encoding/binary"
import "fmt"
import "io"
import "math/rand"
import "os"
import "path/filepath"
import "strconv"
import "strings"

import "github.com/pkg/errors"

func userHomeDir() string {
	dirname, err := os.UserHomeDir()
	if err != nil {
		return "~"
	}
	return dirname
}

const tmpDirectory = `/tmp/mnist/`

var searchDirectories = []string{tmpDirectory, filepath.Join(userHomeDir(), "mnist")}

const trainSetImg = "train-images-idx3-ubyte.gz"
const trainSetVal = "train-labels-idx1-ubyte.gz"
const trainDigImg = "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609"
const trainDigVal = "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c"

const (
	imageMagic = 0x00000803
	labelMagic = 0x00000801
)

// original
const ImgSize = 28

// downscaled
const SmallImgSize = 13

// Prefix starts every path of a rendered digit string.
const Prefix = "mnist:"

// Set holds downscaled digits with their labels.
type Set struct {
	Images [][SmallImgSize * SmallImgSize]byte
	Labels []byte
}

func max4(a, b, c, d byte) (o byte) {
	o = a
	if b > o {
		o = b
	}
	if c > o {
		o = c
	}
	if d > o {
		o = d
	}
	return o
}

// downscale max-pools the interior of a 28x28 digit 2x2 down to 13x13.
func downscale(img []byte) (small [SmallImgSize * SmallImgSize]byte) {
	for y := 0; y < SmallImgSize; y++ {
		for x := 0; x < SmallImgSize; x++ {
			var base = 1 + ImgSize + 2*x + 2*y*ImgSize
			small[y*SmallImgSize+x] = max4(img[base], img[base+1], img[base+ImgSize], img[base+ImgSize+1])
		}
	}
	return
}

func gunzip(r io.Reader) ([]byte, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gzipReader.Close()
	var uncompressedBuffer bytes.Buffer
	_, err = uncompressedBuffer.ReadFrom(gzipReader)
	return uncompressedBuffer.Bytes(), err
}

// Parse reads gzipped idx image and label files.
func Parse(images, labels io.Reader) (*Set, error) {
	img, err := gunzip(images)
	if err != nil {
		return nil, errors.Wrap(err, "mnist images")
	}
	val, err := gunzip(labels)
	if err != nil {
		return nil, errors.Wrap(err, "mnist labels")
	}
	if len(img) < 16 || binary.BigEndian.Uint32(img) != imageMagic {
		return nil, errors.New("mnist images: bad idx header")
	}
	if len(val) < 8 || binary.BigEndian.Uint32(val) != labelMagic {
		return nil, errors.New("mnist labels: bad idx header")
	}
	n := int(binary.BigEndian.Uint32(img[4:]))
	if binary.BigEndian.Uint32(img[8:]) != ImgSize || binary.BigEndian.Uint32(img[12:]) != ImgSize {
		return nil, errors.New("mnist images: not 28x28")
	}
	img, val = img[16:], val[8:]
	if len(img) != n*ImgSize*ImgSize || len(val) != n {
		return nil, errors.Errorf("mnist: %d images declared, %d image bytes, %d labels", n, len(img), len(val))
	}
	var set = &Set{Images: make([][SmallImgSize * SmallImgSize]byte, n), Labels: val}
	for i := range set.Images {
		set.Images[i] = downscale(img[i*ImgSize*ImgSize : (i+1)*ImgSize*ImgSize])
	}
	return set, nil
}

func open(dir, name, digest string) (io.ReadCloser, error) {
	path := filepath.Join(dir, name)
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if fmt.Sprintf("%x", sha256.Sum256(buf)) != digest {
		return nil, errors.Errorf("file hash for file '%s' is incorrect", path)
	}
	return io.NopCloser(bytes.NewReader(buf)), nil
}

// Open loads the training set from dir, or from the first default directory
// holding it when dir is empty. File digests are verified.
func Open(dir string) (*Set, error) {
	var dirs = searchDirectories
	if dir != "" {
		dirs = []string{dir}
	}
	var lastErr error
	for _, d := range dirs {
		images, err := open(d, trainSetImg, trainDigImg)
		if err != nil {
			lastErr = err
			continue
		}
		labels, err := open(d, trainSetVal, trainDigVal)
		if err != nil {
			lastErr = err
			continue
		}
		return Parse(images, labels)
	}
	return nil, errors.Wrap(lastErr, "mnist dataset not found")
}

// Loader renders paths of the form "mnist:i,j,k" as the digits at those
// indices of Set, left to right, in an image wide enough for MaxChars digits.
type Loader struct {
	Set      *Set
	MaxChars int
}

func (l Loader) Geometry() (h, w, c int) {
	return SmallImgSize, l.MaxChars * SmallImgSize, 1
}

func (l Loader) Load(path string) ([]float64, error) {
	if !strings.HasPrefix(path, Prefix) {
		return nil, errors.Errorf("%q is not an mnist path", path)
	}
	fields := strings.Split(path[len(Prefix):], ",")
	if len(fields) > l.MaxChars {
		return nil, errors.Errorf("%q has more than %d digits", path, l.MaxChars)
	}
	_, w, _ := l.Geometry()
	var o = make([]float64, SmallImgSize*w)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n >= len(l.Set.Images) {
			return nil, errors.Errorf("%q: no digit %q", path, f)
		}
		for y := 0; y < SmallImgSize; y++ {
			for x := 0; x < SmallImgSize; x++ {
				o[y*w+i*SmallImgSize+x] = float64(l.Set.Images[n][y*SmallImgSize+x]) / 255
			}
		}
	}
	return o, nil
}

// Generate draws n strings of minLen..maxLen random digits of set.
func Generate(set *Set, n, minLen, maxLen int, rng *rand.Rand) (paths, labels []string) {
	for i := 0; i < n; i++ {
		length := minLen
		if maxLen > minLen {
			length += rng.Intn(maxLen - minLen + 1)
		}
		var idx = make([]string, length)
		var label strings.Builder
		for j := range idx {
			k := rng.Intn(len(set.Images))
			idx[j] = strconv.Itoa(k)
			label.WriteByte('0' + set.Labels[k])
		}
		paths = append(paths, Prefix+strings.Join(idx, ","))
		labels = append(labels, label.String())
	}
	return
}
