package procam

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/EDM-Research/ProcamCalib/rimage/transform"
)

// String prints a table of the calibrated devices with their intrinsics, distortion and
// reprojection error, followed by the stereo figures.
func (c *Calibration) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Device", "Size", "Focal", "Principal point", "Distortion", "RMS"})
	t.AppendRow(deviceRow("camera", c.Camera, c.CameraRMS))
	t.AppendRow(deviceRow("projector", c.Projector, c.ProjectorRMS))
	t.AppendSeparator()
	t.AppendRow(table.Row{"stereo", "", "", "", fmt.Sprintf("%d detections", c.Detections), fmt.Sprintf("%.4f", c.StereoRMS)})
	if c.Mirror != nil {
		t.AppendRow(table.Row{"mirror", "", "", "", c.Mirror.String(), ""})
	}
	return t.Render()
}

func deviceRow(name string, model *transform.PinholeCameraModel, rms float64) table.Row {
	if model == nil || model.PinholeCameraIntrinsics == nil {
		return table.Row{name, "missing", "", "", "", ""}
	}
	distortion := "none"
	if model.Distortion != nil {
		distortion = fmt.Sprintf("%s %.4g", model.Distortion.ModelType(), model.Distortion.Parameters())
	}
	return table.Row{
		name,
		fmt.Sprintf("%dx%d", model.Width, model.Height),
		fmt.Sprintf("%.2f, %.2f", model.Fx, model.Fy),
		fmt.Sprintf("%.2f, %.2f", model.Ppx, model.Ppy),
		distortion,
		fmt.Sprintf("%.4f", rms),
	}
}
