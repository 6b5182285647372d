package workers

import (
	"fmt"
	"github.com/APTrust/mets-retriever/context"
	"github.com/APTrust/mets-retriever/models"
	"github.com/APTrust/mets-retriever/util"
	"github.com/APTrust/mets-retriever/util/fileutil"
	"github.com/pkg/errors"
	"path/filepath"
	"time"
)

// METSRetriever copies METS files out of AIPs in the Storage Service.
// RetrieveOne fetches a single package's METS file. RetrieveAll
// fetches METS for every eligible package that isn't already in
// the ledger.
type METSRetriever struct {
	// Context contains basic information required to run,
	// connect to the Storage Service, etc.
	Context *context.Context
	// OutputDirectory is where METS and sidecar files go.
	OutputDirectory string
	// EmitSidecar says whether to write METS.<uuid>.txt next
	// to each METS file.
	EmitSidecar bool
	Sidecar     *SidecarComposer
}

func NewMETSRetriever(_context *context.Context, emitSidecar bool) *METSRetriever {
	return &METSRetriever{
		Context:         _context,
		OutputDirectory: _context.Config.OutputDirectory,
		EmitSidecar:     emitSidecar,
		Sidecar:         NewSidecarComposer(_context.StorageService, _context.Fs),
	}
}

// RetrieveOne fetches the METS file for one package, whether or not
// we've fetched it before. It does not touch the ledger. All errors
// are returned to the caller. A METS file that's missing after
// extraction produces a VerificationError.
func (retriever *METSRetriever) RetrieveOne(uuid string) (*models.RetrievalResult, error) {
	result, err := retriever.retrieve(uuid)
	retriever.logJson(result)
	return result, err
}

// RetrieveAll fetches METS files for all eligible packages that are
// not yet in the ledger, in the order the Storage Service lists them.
// Each package whose METS file is retrieved is recorded in the ledger
// before we move on to the next. A package that fails verification
// is logged and skipped. Any other error stops the run and is returned
// along with the summary of work done so far.
func (retriever *METSRetriever) RetrieveAll(replicasRequired bool) (*models.BatchSummary, error) {
	summary := models.NewBatchSummary()
	summary.Start()
	ledger := retriever.Context.Ledger
	if ledger == nil {
		return retriever.abort(summary, fmt.Errorf("Ledger is not open"))
	}
	packages, err := retriever.Context.StorageService.ListPackages()
	if err != nil {
		return retriever.abort(summary, err)
	}
	eligible := SelectEligible(packages, replicasRequired)
	summary.Eligible = len(eligible)
	retriever.Context.MessageLog.Infof("%d of %d AIPs are eligible for METS retrieval",
		len(eligible), len(packages))

	for _, pkg := range eligible {
		alreadyRetrieved, err := ledger.Has(pkg.UUID)
		if err != nil {
			return retriever.abort(summary, err)
		}
		if alreadyRetrieved {
			retriever.Context.MessageLog.Debugf("Skipping %s: METS already retrieved", pkg.UUID)
			summary.Skipped++
			continue
		}
		summary.Attempted++
		result, err := retriever.retrieve(pkg.UUID)
		if IsVerificationError(err) {
			retriever.logJson(result)
			retriever.Context.MessageLog.Warningf(
				"Unable to download METS file for AIP with UUID %s: %v", pkg.UUID, err)
			summary.AddVerificationFailure(pkg.UUID)
			continue
		} else if err != nil {
			retriever.logJson(result)
			return retriever.abort(summary, err)
		}
		if err = ledger.Record(pkg.UUID); err != nil {
			result.ErrorMessage = err.Error()
			retriever.logJson(result)
			return retriever.abort(summary, err)
		}
		result.RecordedInLedger = true
		retriever.logJson(result)
		summary.Succeeded++
	}
	summary.Finish()
	retriever.Context.MessageLog.Info(summary.StatsLine())
	return summary, nil
}

// retrieve is the single-package sequence shared by RetrieveOne
// and RetrieveAll.
func (retriever *METSRetriever) retrieve(uuid string) (*models.RetrievalResult, error) {
	result := models.NewRetrievalResult(uuid)
	fail := func(err error) (*models.RetrievalResult, error) {
		result.ErrorMessage = err.Error()
		return result, err
	}
	dir := retriever.OutputDirectory
	if err := retriever.Context.Fs.MkdirAll(dir, 0755); err != nil {
		return fail(errors.Wrapf(err, "Cannot create output directory %s", dir))
	}
	if err := retriever.Context.StorageService.ExtractMETS(uuid, dir); err != nil {
		return fail(err)
	}
	metsPath := filepath.Join(dir, util.METSFileName(uuid))
	if !fileutil.IsRegularFile(retriever.Context.Fs, metsPath) {
		return fail(&VerificationError{UUID: uuid, ExpectedPath: metsPath})
	}
	result.METSPath = metsPath
	result.RetrievedAt = time.Now().UTC()
	if retriever.EmitSidecar {
		sidecarPath, err := retriever.Sidecar.Write(uuid, dir)
		if err != nil {
			return fail(errors.Wrapf(err, "Cannot write sidecar for %s", uuid))
		}
		result.SidecarPath = sidecarPath
	}
	if err := retriever.mirror(result); err != nil {
		return fail(err)
	}
	if err := retriever.publish(result); err != nil {
		return fail(err)
	}
	retriever.Context.MessageLog.Infof("Downloaded METS file %s", util.METSFileName(uuid))
	return result, nil
}

// mirror copies the METS file and sidecar to the mirror bucket,
// if there is one.
func (retriever *METSRetriever) mirror(result *models.RetrievalResult) error {
	if retriever.Context.Config.MirrorBucket == "" {
		return nil
	}
	type mirrorFile struct {
		path        string
		contentType string
	}
	files := []mirrorFile{{result.METSPath, "application/xml"}}
	if result.SidecarPath != "" {
		files = append(files, mirrorFile{result.SidecarPath, "text/plain"})
	}
	for _, file := range files {
		filePath := file.path
		upload := retriever.Context.NewMirrorUpload(filepath.Base(filePath), file.contentType)
		upload.AddMetadata("uuid", result.UUID)
		reader, err := retriever.Context.Fs.Open(filePath)
		if err != nil {
			return errors.Wrapf(err, "Cannot open %s for mirroring", filePath)
		}
		upload.Send(reader)
		reader.Close()
		if upload.ErrorMessage != "" {
			return fmt.Errorf("Cannot copy %s to s3://%s/%s: %s", filePath,
				*upload.UploadInput.Bucket, *upload.UploadInput.Key, upload.ErrorMessage)
		}
		result.MirroredKeys = append(result.MirroredKeys, *upload.UploadInput.Key)
		retriever.Context.MessageLog.Debugf("Copied %s to s3://%s/%s", filePath,
			*upload.UploadInput.Bucket, *upload.UploadInput.Key)
	}
	return nil
}

// publish sends the result to NSQ, if NSQ is configured.
func (retriever *METSRetriever) publish(result *models.RetrievalResult) error {
	if retriever.Context.NSQClient == nil {
		return nil
	}
	jsonString, err := result.ToJson()
	if err != nil {
		return err
	}
	return retriever.Context.NSQClient.Publish(retriever.Context.Config.NsqTopic, []byte(jsonString))
}

func (retriever *METSRetriever) logJson(result *models.RetrievalResult) {
	jsonString, err := result.ToJson()
	if err != nil {
		retriever.Context.MessageLog.Errorf("Cannot serialize result for %s: %v", result.UUID, err)
		return
	}
	retriever.Context.JsonLog.Println(jsonString)
}

func (retriever *METSRetriever) abort(summary *models.BatchSummary, err error) (*models.BatchSummary, error) {
	summary.AddError(err.Error())
	summary.Finish()
	retriever.Context.MessageLog.Errorf("METS retrieval stopped: %v", err)
	retriever.Context.MessageLog.Info(summary.StatsLine())
	return summary, err
}
