package landmark

// #region name
// Name identifies a keypoint in the fixed 33-point pose scheme.
type Name string

const (
	Nose           Name = "nose"
	LeftEyeInner   Name = "left_eye_inner"
	LeftEye        Name = "left_eye"
	LeftEyeOuter   Name = "left_eye_outer"
	RightEyeInner  Name = "right_eye_inner"
	RightEye       Name = "right_eye"
	RightEyeOuter  Name = "right_eye_outer"
	LeftEar        Name = "left_ear"
	RightEar       Name = "right_ear"
	MouthLeft      Name = "mouth_left"
	MouthRight     Name = "mouth_right"
	LeftShoulder   Name = "left_shoulder"
	RightShoulder  Name = "right_shoulder"
	LeftElbow      Name = "left_elbow"
	RightElbow     Name = "right_elbow"
	LeftWrist      Name = "left_wrist"
	RightWrist     Name = "right_wrist"
	LeftPinky      Name = "left_pinky"
	RightPinky     Name = "right_pinky"
	LeftIndex      Name = "left_index"
	RightIndex     Name = "right_index"
	LeftThumb      Name = "left_thumb"
	RightThumb     Name = "right_thumb"
	LeftHip        Name = "left_hip"
	RightHip       Name = "right_hip"
	LeftKnee       Name = "left_knee"
	RightKnee      Name = "right_knee"
	LeftAnkle      Name = "left_ankle"
	RightAnkle     Name = "right_ankle"
	LeftHeel       Name = "left_heel"
	RightHeel      Name = "right_heel"
	LeftFootIndex  Name = "left_foot_index"
	RightFootIndex Name = "right_foot_index"
)

// KeypointCount is the width of a fully populated frame.
const KeypointCount = 33

// Scheme lists keypoint names in detector index order.
var Scheme = [KeypointCount]Name{
	Nose, LeftEyeInner, LeftEye, LeftEyeOuter, RightEyeInner, RightEye, RightEyeOuter,
	LeftEar, RightEar, MouthLeft, MouthRight,
	LeftShoulder, RightShoulder, LeftElbow, RightElbow, LeftWrist, RightWrist,
	LeftPinky, RightPinky, LeftIndex, RightIndex, LeftThumb, RightThumb,
	LeftHip, RightHip, LeftKnee, RightKnee, LeftAnkle, RightAnkle,
	LeftHeel, RightHeel, LeftFootIndex, RightFootIndex,
}

var indexByName = func() map[Name]int {
	m := make(map[Name]int, KeypointCount)
	for i, n := range Scheme {
		m[n] = i
	}
	return m
}()

// Index returns the detector index of n.
func Index(n Name) (int, bool) {
	i, ok := indexByName[n]
	return i, ok
}

// #endregion name

// #region keypoint
// Keypoint is one detected anatomical point in normalized frame coordinates.
type Keypoint struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          *float64 `json:"z,omitempty"`
	Confidence float64  `json:"confidence"`
}

// #endregion keypoint

// #region frame
// Frame holds one video frame's keypoints, indexed by Scheme order.
// A nil entry is an absent keypoint; an empty slice means no pose was detected.
type Frame struct {
	Index     int         `json:"frame"`
	Timestamp float64     `json:"timestamp"`
	Keypoints []*Keypoint `json:"landmarks"`
}

// Detected reports whether the detector found a pose in this frame.
func (f Frame) Detected() bool {
	for _, kp := range f.Keypoints {
		if kp != nil {
			return true
		}
	}
	return false
}

// #endregion frame

// #region sequence
// VideoInfo describes the source video the sequence was extracted from.
type VideoInfo struct {
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"frame_count"`
	Duration    float64 `json:"duration"`
}

// Sequence is the ordered landmark time series for one video.
// Frame indices are strictly increasing; the sequence may be sparse.
type Sequence struct {
	Video  VideoInfo `json:"video"`
	Frames []Frame   `json:"frames"`
}

// #endregion sequence
