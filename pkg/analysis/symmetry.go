package analysis

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"sync"

	pigo "github.com/esimov/pigo/core"

	"github.com/ecotrace/verity/pkg/imaging"
)

// SymmetryAnalyzer scores facial symmetry, skin texture and anatomy
// plausibility on images. In text mode it runs the prose-style heuristic
// under the same slot.
type SymmetryAnalyzer struct {
	cascadePath string

	once       sync.Once
	classifier *pigo.Pigo
}

// NewSymmetryAnalyzer builds the analyzer. cascadePath points at a pigo
// facefinder cascade; when empty or unreadable the face checks are skipped
// and only the whole-image heuristics run.
func NewSymmetryAnalyzer(cascadePath string) *SymmetryAnalyzer {
	return &SymmetryAnalyzer{cascadePath: cascadePath}
}

func (a *SymmetryAnalyzer) ID() string          { return AnalyzerSymmetry }
func (a *SymmetryAnalyzer) BaseWeight() float64 { return 0.40 }

func (a *SymmetryAnalyzer) faceClassifier() *pigo.Pigo {
	a.once.Do(func() {
		if a.cascadePath == "" {
			return
		}
		data, err := os.ReadFile(a.cascadePath)
		if err != nil {
			log.Printf("[WARN] Face cascade unavailable (%v), symmetry analyzer runs without face checks", err)
			return
		}
		classifier, err := pigo.NewPigo().Unpack(data)
		if err != nil {
			log.Printf("[WARN] Face cascade unpack failed (%v), symmetry analyzer runs without face checks", err)
			return
		}
		a.classifier = classifier
	})
	return a.classifier
}

func (a *SymmetryAnalyzer) Analyze(ctx context.Context, req *Request) AnalyzerOutput {
	if req.ContentType == ContentText {
		return analyzeTextStyle(a.ID(), a.BaseWeight(), req.Content)
	}

	img, err := imaging.Decode(req.Payload)
	if err != nil {
		return FailedOutput(a.ID(), a.BaseWeight(), "image_decode_failed")
	}
	gray := imaging.GrayMat(img)

	var raw float64
	var reasons []string
	var flags []string

	faces := a.detectFaces(gray)
	flags = append(flags, fmt.Sprintf("%d face(s) detected", len(faces)))

	maxFaces := GetParams().MaxFaces
	if len(faces) > 0 {
		scored := faces
		if len(scored) > maxFaces {
			scored = scored[:maxFaces]
		}
		var faceTotal float64
		seen := make(map[string]bool)
		for _, f := range scored {
			score, faceReasons := scoreFace(gray.Region(f.x, f.y, f.size, f.size))
			faceTotal += score
			for _, r := range faceReasons {
				if !seen[r] {
					seen[r] = true
					reasons = append(reasons, r)
				}
			}
		}
		raw += faceTotal / float64(len(scored))
		if len(faces) > maxFaces {
			raw += 0.15
			reasons = append(reasons, "excessive_faces")
		}
	}

	mask, w, h := imaging.SkinMask(img)
	skinRatio := imaging.MaskRatio(mask)
	if skinRatio > 0.6 {
		raw += 0.15
		reasons = append(reasons, "excessive_skin_tone")
		flags = append(flags, fmt.Sprintf("skin coverage %.0f%%", skinRatio*100))
	}

	if len(faces) == 0 {
		// Without a face, look for elongated low-solidity skin blobs, the
		// classic malformed-extremity artifact.
		minArea := w * h / 100
		for _, b := range imaging.Blobs(mask, w, h) {
			if b.Area > minArea && b.AspectRatio() > 5 && b.Solidity() < 0.5 {
				raw += 0.5
				reasons = append(reasons, "deformed_extremities")
				flags = append(flags, fmt.Sprintf("skin blob %dx%d solidity %.2f", b.Width(), b.Height(), b.Solidity()))
				break
			}
		}
	}

	return scoredOutput(a.ID(), a.BaseWeight(), raw, reasons, flags, "no_facial_anomalies")
}

type faceBox struct {
	x, y, size int
}

func (a *SymmetryAnalyzer) detectFaces(gray *imaging.Mat) []faceBox {
	classifier := a.faceClassifier()
	if classifier == nil || gray.W < 40 || gray.H < 40 {
		return nil
	}
	params := pigo.CascadeParams{
		MinSize:     40,
		MaxSize:     gray.W,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: gray.Bytes(),
			Rows:   gray.H,
			Cols:   gray.W,
			Dim:    gray.W,
		},
	}
	dets := classifier.RunCascade(params, 0.0)
	dets = classifier.ClusterDetections(dets, 0.2)

	var faces []faceBox
	for _, d := range dets {
		if d.Q < 5.0 {
			continue
		}
		faces = append(faces, faceBox{
			x:    d.Col - d.Scale/2,
			y:    d.Row - d.Scale/2,
			size: d.Scale,
		})
	}
	// Largest faces first so the scored subset covers the subjects.
	sort.Slice(faces, func(i, j int) bool { return faces[i].size > faces[j].size })
	return faces
}

// scoreFace runs the per-face checks on a cropped grayscale region.
func scoreFace(face *imaging.Mat) (float64, []string) {
	if face.W < 16 || face.H < 16 {
		return 0, nil
	}
	var score float64
	var reasons []string

	// Mirror symmetry: generated faces are often eerily symmetric, while
	// heavily warped ones diverge wildly.
	half := face.W / 2
	left := face.Region(0, 0, half, face.H)
	right := face.Region(face.W-half, 0, half, face.H).FlipH()
	diff := imaging.AbsDiff(left, right).Mean()
	switch {
	case diff < 5:
		score += 0.25
		reasons = append(reasons, "unnatural_symmetry")
	case diff > 50:
		score += 0.15
		reasons = append(reasons, "face_distortion")
	}

	texture := imaging.LaplacianVar(face)
	switch {
	case texture < 20:
		score += 0.30
		reasons = append(reasons, "unnaturally_smooth_skin")
	case texture < 50:
		score += 0.10
	}

	eyes := locateEyes(face)
	switch {
	case len(eyes) == 0:
		score += 0.15
		reasons = append(reasons, "missing_eyes")
	case len(eyes) == 1:
		score += 0.08
	default:
		dx := float64(eyes[1][0] - eyes[0][0])
		dy := float64(eyes[1][1] - eyes[0][1])
		if dx != 0 {
			angle := math.Abs(math.Atan2(dy, dx) * 180 / math.Pi)
			if angle > 15 {
				score += 0.25
				reasons = append(reasons, "eye_misalignment")
			}
		}
	}

	return score, reasons
}

// locateEyes finds up to two dark blobs in the upper half of the face,
// a crude but workable pupil proxy. Centers are returned left to right.
func locateEyes(face *imaging.Mat) [][2]int {
	upper := face.Region(0, face.H/5, face.W, face.H/2-face.H/5)
	if upper.W < 8 || upper.H < 4 {
		return nil
	}
	threshold := upper.Mean() - upper.Std()
	mask := make([]bool, len(upper.Pix))
	for i, v := range upper.Pix {
		mask[i] = v < threshold
	}
	blobs := imaging.Blobs(mask, upper.W, upper.H)
	minArea := upper.W * upper.H / 200
	var candidates []imaging.Blob
	for _, b := range blobs {
		if b.Area >= minArea && b.Width() < upper.W/2 {
			candidates = append(candidates, b)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Area > candidates[j].Area })
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}
	centers := make([][2]int, 0, len(candidates))
	for _, b := range candidates {
		centers = append(centers, [2]int{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2})
	}
	sort.Slice(centers, func(i, j int) bool { return centers[i][0] < centers[j][0] })
	return centers
}
