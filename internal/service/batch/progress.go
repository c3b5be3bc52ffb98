package batch

import batchModels "copydesk/internal/domain/models/batch"

// stagesPerItem is the number of pipeline stages every product passes
// through. The backend reports its position inside the current item as an
// opaque stage offset.
const stagesPerItem = 3

// ComputeProgress derives the progress indicator of a job.
// A job with no items has no defined progress and is reported hidden at 0%.
func ComputeProgress(job *batchModels.Job) batchModels.Progress {
	if job == nil || job.AllCount <= 0 {
		return batchModels.Progress{}
	}

	total := float64(job.AllCount * stagesPerItem)
	remaining := float64(job.UnfinishedCount*stagesPerItem - job.Stage)
	percent := (total - remaining) / total * 100

	return batchModels.Progress{
		Percent: min(max(percent, 0), 100),
		Visible: true,
	}
}
