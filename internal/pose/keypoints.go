package pose

// Joint names one of the 17 COCO pose landmarks.
type Joint string

const (
	JointNose          Joint = "nose"
	JointLeftEye       Joint = "left_eye"
	JointRightEye      Joint = "right_eye"
	JointLeftEar       Joint = "left_ear"
	JointRightEar      Joint = "right_ear"
	JointLeftShoulder  Joint = "left_shoulder"
	JointRightShoulder Joint = "right_shoulder"
	JointLeftElbow     Joint = "left_elbow"
	JointRightElbow    Joint = "right_elbow"
	JointLeftWrist     Joint = "left_wrist"
	JointRightWrist    Joint = "right_wrist"
	JointLeftHip       Joint = "left_hip"
	JointRightHip      Joint = "right_hip"
	JointLeftKnee      Joint = "left_knee"
	JointRightKnee     Joint = "right_knee"
	JointLeftAnkle     Joint = "left_ankle"
	JointRightAnkle    Joint = "right_ankle"
)

// Joints lists all landmarks in COCO keypoint order; the index of a joint in
// this slice is its keypoint index in the model output.
var Joints = []Joint{
	JointNose,
	JointLeftEye,
	JointRightEye,
	JointLeftEar,
	JointRightEar,
	JointLeftShoulder,
	JointRightShoulder,
	JointLeftElbow,
	JointRightElbow,
	JointLeftWrist,
	JointRightWrist,
	JointLeftHip,
	JointRightHip,
	JointLeftKnee,
	JointRightKnee,
	JointLeftAnkle,
	JointRightAnkle,
}

// skeleton pairs joints connected when rendering an annotated frame.
var skeleton = [][2]Joint{
	{JointLeftShoulder, JointRightShoulder},
	{JointLeftShoulder, JointLeftElbow},
	{JointLeftElbow, JointLeftWrist},
	{JointRightShoulder, JointRightElbow},
	{JointRightElbow, JointRightWrist},
	{JointLeftShoulder, JointLeftHip},
	{JointRightShoulder, JointRightHip},
	{JointLeftHip, JointRightHip},
	{JointLeftHip, JointLeftKnee},
	{JointLeftKnee, JointLeftAnkle},
	{JointRightHip, JointRightKnee},
	{JointRightKnee, JointRightAnkle},
}
