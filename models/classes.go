// Package models - Label vocabularies for detection model outputs.
package models

import (
	"github.com/pkg/errors"
)

// ErrLabelOutOfRange is returned when a class index falls outside a vocabulary.
var ErrLabelOutOfRange = errors.New("class index out of label vocabulary")

// OutputClass represents one detection label.
type OutputClass struct {
	// The integer index returned by the model.
	Index int
	// The human-readable label.
	Name string
}

// OutputClassSet ties a model family to its full list of labels.
type OutputClassSet struct {
	// Family the vocabulary belongs to.
	Family Family
	// Classes ordered by index.
	Classes []OutputClass
	// nameToIdx for fast lookup by name.
	nameToIdx map[string]int
}

// NewOutputClassSet builds a vocabulary whose indices follow the order of names.
func NewOutputClassSet(family Family, names []string) *OutputClassSet {
	set := &OutputClassSet{
		Family:  family,
		Classes: make([]OutputClass, len(names)),
	}
	for i, name := range names {
		set.Classes[i] = OutputClass{Index: i, Name: name}
	}
	set.buildNameIndexMap()
	return set
}

func (s *OutputClassSet) buildNameIndexMap() {
	s.nameToIdx = make(map[string]int, len(s.Classes))
	for _, c := range s.Classes {
		s.nameToIdx[c.Name] = c.Index
	}
}

// Len returns the vocabulary size.
func (s *OutputClassSet) Len() int {
	return len(s.Classes)
}

// Name returns the class name for an index.
//
// Arguments:
//   - idx: The class index emitted by the model.
//
// Returns:
//   - string: The human-readable label.
//   - error: ErrLabelOutOfRange when idx is not in the vocabulary.
//
// @example
// name, err := YOLOClasses.Name(15) // "cat"
func (s *OutputClassSet) Name(idx int) (string, error) {
	if idx < 0 || idx >= len(s.Classes) {
		return "", errors.Wrapf(ErrLabelOutOfRange, "index %d, %s vocabulary has %d classes",
			idx, s.Family, len(s.Classes))
	}
	return s.Classes[idx].Name, nil
}

// Index returns the class index for a name.
func (s *OutputClassSet) Index(name string) (int, error) {
	idx, ok := s.nameToIdx[name]
	if !ok {
		return -1, errors.Errorf("name %q not found in %s vocabulary", name, s.Family)
	}
	return idx, nil
}

// Names returns the labels in index order.
func (s *OutputClassSet) Names() []string {
	names := make([]string, len(s.Classes))
	for i, c := range s.Classes {
		names[i] = c.Name
	}
	return names
}

// COCOClasses is the full 80 COCO classes plus "__background__" at index 0.
var COCOClasses = &OutputClassSet{
	Family: FamilyCOCO,
	Classes: []OutputClass{
		{0, "__background__"},
		{1, "person"},
		{2, "bicycle"},
		{3, "car"},
		{4, "motorcycle"},
		{5, "airplane"},
		{6, "bus"},
		{7, "train"},
		{8, "truck"},
		{9, "boat"},
		{10, "traffic light"},
		{11, "fire hydrant"},
		{12, "stop sign"},
		{13, "parking meter"},
		{14, "bench"},
		{15, "bird"},
		{16, "cat"},
		{17, "dog"},
		{18, "horse"},
		{19, "sheep"},
		{20, "cow"},
		{21, "elephant"},
		{22, "bear"},
		{23, "zebra"},
		{24, "giraffe"},
		{25, "backpack"},
		{26, "umbrella"},
		{27, "handbag"},
		{28, "tie"},
		{29, "suitcase"},
		{30, "frisbee"},
		{31, "skis"},
		{32, "snowboard"},
		{33, "sports ball"},
		{34, "kite"},
		{35, "baseball bat"},
		{36, "baseball glove"},
		{37, "skateboard"},
		{38, "surfboard"},
		{39, "tennis racket"},
		{40, "bottle"},
		{41, "wine glass"},
		{42, "cup"},
		{43, "fork"},
		{44, "knife"},
		{45, "spoon"},
		{46, "bowl"},
		{47, "banana"},
		{48, "apple"},
		{49, "sandwich"},
		{50, "orange"},
		{51, "broccoli"},
		{52, "carrot"},
		{53, "hot dog"},
		{54, "pizza"},
		{55, "donut"},
		{56, "cake"},
		{57, "chair"},
		{58, "couch"},
		{59, "potted plant"},
		{60, "bed"},
		{61, "dining table"},
		{62, "toilet"},
		{63, "tv"},
		{64, "laptop"},
		{65, "mouse"},
		{66, "remote"},
		{67, "keyboard"},
		{68, "cell phone"},
		{69, "microwave"},
		{70, "oven"},
		{71, "toaster"},
		{72, "sink"},
		{73, "refrigerator"},
		{74, "book"},
		{75, "clock"},
		{76, "vase"},
		{77, "scissors"},
		{78, "teddy bear"},
		{79, "hair drier"},
		{80, "toothbrush"},
	},
}

func init() {
	COCOClasses.buildNameIndexMap()
}

// YOLOClasses is the 80 COCO classes without background.
// YOLO models index directly into this zero-based list.
var YOLOClasses = func() *OutputClassSet {
	names := make([]string, 0, len(COCOClasses.Classes)-1)
	for _, c := range COCOClasses.Classes[1:] {
		names = append(names, c.Name)
	}
	return NewOutputClassSet(FamilyYOLO, names)
}()

// ClassSet returns the vocabulary of a model family.
func ClassSet(family Family) (*OutputClassSet, error) {
	switch family {
	case FamilyYOLO:
		return YOLOClasses, nil
	case FamilyCOCO:
		return COCOClasses, nil
	default:
		return nil, errors.Errorf("no vocabulary registered for family %q", family)
	}
}
