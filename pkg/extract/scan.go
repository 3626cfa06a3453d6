package extract

import (
	"errors"

	"pfa/models"
)

const maxReasonLen = 255

// ScanRecord builds the audit row for one extraction. Pass the error
// returned by Extract (if any) so failures are recorded too.
func ScanRecord(userID uint, up Upload, storePath string, resp *Response, err error) models.ReceiptScan {
	rec := models.ReceiptScan{
		UserID:      userID,
		FileName:    up.Filename,
		StorePath:   storePath,
		ContentType: up.ContentType,
		Source:      "donut-" + up.Kind(),
	}
	if err != nil {
		rec.Failed = true
		rec.FailedReason = failureReason(err)
		return rec
	}
	if resp != nil {
		rec.Source = resp.Diagnostics.Source
		rec.Engine = resp.Diagnostics.Engine
		rec.Items = resp.Diagnostics.Items
		rec.DateDetected = resp.Diagnostics.DateDetected
		rec.TotalMinor = resp.Diagnostics.TotalMinor()
	}
	return rec
}

func failureReason(err error) string {
	var in *InputError
	msg := err.Error()
	if errors.As(err, &in) {
		msg = in.Message()
	}
	if len(msg) > maxReasonLen {
		msg = msg[:maxReasonLen]
	}
	return msg
}
