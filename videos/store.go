package videos

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"video-optimizer/config"
	"video-optimizer/database"
)

// Metadata is what the prober hands the scanner for one file.
type Metadata struct {
	ProbeJSON string
	Codec     string
	Size      int64
}

// Upsert records a discovered file. A new path becomes a pending record.
// A known path is refreshed (probe data, codec, size) only while the
// record is still pending and the file's size signature changed;
// records further along the pipeline are left alone.
func Upsert(filepath, filename string, meta Metadata) (*Video, error) {
	db := database.Get()

	var out *Video
	err := database.WithRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			var v Video
			err := tx.Where("filepath = ?", filepath).First(&v).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				v = Video{
					Filepath:      filepath,
					Filename:      filename,
					OriginalSize:  meta.Size,
					OriginalCodec: meta.Codec,
					ProbeData:     meta.ProbeJSON,
					Status:        Pending,
				}
				if err := tx.Create(&v).Error; err != nil {
					return err
				}
				out = &v
				return nil
			}
			if err != nil {
				return err
			}

			if v.Status == Pending && v.OriginalSize != meta.Size {
				err = tx.Model(&v).Updates(map[string]interface{}{
					"original_size":  meta.Size,
					"original_codec": meta.Codec,
					"probe_data":     meta.ProbeJSON,
				}).Error
				if err != nil {
					return err
				}
			}
			out = &v
			return nil
		})
	})
	return out, err
}

func Get(id uint) (*Video, error) {
	db := database.Get()
	var v Video
	err := db.First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func ByPath(filepath string) (*Video, error) {
	db := database.Get()
	var v Video
	err := db.Where("filepath = ?", filepath).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Filter narrows a listing. Zero values mean "no constraint".
type Filter struct {
	Status    Status
	MinSize   int64  // original_size strictly greater
	Codec     string // exact original_codec
	Name      string // filename substring
	Directory string // filepath substring
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MinSize > 0 {
		q = q.Where("original_size > ?", f.MinSize)
	}
	if f.Codec != "" {
		q = q.Where("original_codec = ?", f.Codec)
	}
	if f.Name != "" {
		q = q.Where("filename LIKE ?", "%"+f.Name+"%")
	}
	if f.Directory != "" {
		q = q.Where("filepath LIKE ?", "%"+f.Directory+"%")
	}
	return q
}

// List returns one page of matching records plus the total page count.
// An empty result is ([], 0, nil), never an error.
func List(f Filter, page, limit int) ([]Video, int, error) {
	db := database.Get()

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := f.apply(db.Model(&Video{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	list := []Video{}
	err := f.apply(db.Model(&Video{})).
		Order("updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return list, totalPages, nil
}

func CountByStatus() (map[string]int64, error) {
	db := database.Get()

	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := db.Model(&Video{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(AllStatuses))
	for _, s := range AllStatuses {
		counts[string(s)] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// ClaimNext leases the oldest record in the given status to claimant.
// The select and the lease write happen in one immediate transaction,
// and the lease write re-checks status and lease state, so two pollers
// racing on the same status never both win a record. Returns (nil, nil)
// when nothing is eligible.
func ClaimNext(status Status, claimant string) (*Video, error) {
	db := database.Get()
	staleBefore := time.Now().Add(-config.GetClaimLeaseTTL())

	var claimed *Video
	err := database.WithRetry(func() error {
		claimed = nil
		return db.Transaction(func(tx *gorm.DB) error {
			var v Video
			err := tx.
				Where("status = ? AND (claimed_by = '' OR claimed_by IS NULL OR claimed_at < ?)",
					status, staleBefore).
				Order("updated_at ASC").
				First(&v).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}

			now := time.Now()
			res := tx.Model(&Video{}).
				Where("id = ? AND status = ? AND (claimed_by = '' OR claimed_by IS NULL OR claimed_at < ?)",
					v.ID, status, staleBefore).
				Updates(map[string]interface{}{
					"claimed_by": claimant,
					"claimed_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// lost the race; the caller polls again next cycle
				return nil
			}
			v.ClaimedBy = claimant
			v.ClaimedAt = &now
			claimed = &v
			return nil
		})
	})
	return claimed, err
}

// UpdateProgress overwrites the live transcode progress text. It is
// not a transition; the processor calls it on a throttle while ffmpeg
// runs so readers can compute percentage without touching the disk.
func UpdateProgress(id uint, text string) error {
	db := database.Get()
	return database.WithRetry(func() error {
		return db.Model(&Video{}).Where("id = ?", id).Update("progress", text).Error
	})
}

// Release drops a lease without a status change, for claims abandoned
// before any external side effect happened.
func Release(id uint) error {
	db := database.Get()
	return database.WithRetry(func() error {
		return db.Model(&Video{}).Where("id = ?", id).Updates(map[string]interface{}{
			"claimed_by": "",
			"claimed_at": nil,
		}).Error
	})
}

// ReapStale clears leases older than ttl so abandoned claims return to
// their eligible pool. Returns how many were reclaimed.
func ReapStale(ttl time.Duration) (int64, error) {
	db := database.Get()
	var n int64
	err := database.WithRetry(func() error {
		res := db.Model(&Video{}).
			Where("claimed_by <> '' AND claimed_at < ?", time.Now().Add(-ttl)).
			Updates(map[string]interface{}{
				"claimed_by": "",
				"claimed_at": nil,
			})
		n = res.RowsAffected
		return res.Error
	})
	return n, err
}

// UpdateStatus is the single write path for a record's status. The edge
// (current -> target) must be legal per the transition table; anything
// else fails with ErrInvalidTransition and leaves the row untouched.
// fields are extra column updates applied in the same transaction.
// Any lease on the record is cleared.
func UpdateStatus(id uint, target Status, fields map[string]interface{}) (*Video, error) {
	db := database.Get()

	var out *Video
	err := database.WithRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			var v Video
			err := tx.First(&v, id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}

			if !CanTransition(v.Status, target) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, v.Status, target)
			}

			updates := map[string]interface{}{
				"status":     target,
				"claimed_by": "",
				"claimed_at": nil,
			}
			for k, val := range fields {
				updates[k] = val
			}
			switch target {
			case Pending:
				// revert: the recipe and any transcode result are stale
				updates["ffmpeg_command"] = ""
				updates["new_codec"] = ""
				updates["optimized_size"] = 0
				updates["optimized_path"] = ""
				updates["progress"] = ""
				updates["failure_reason"] = ""
			case Optimized, Accepted, Replaced:
				// the only statuses that may carry a transcode result
			default:
				updates["new_codec"] = ""
				updates["optimized_size"] = 0
				updates["optimized_path"] = ""
			}

			if err := tx.Model(&v).Updates(updates).Error; err != nil {
				return err
			}
			if err := tx.First(&v, id).Error; err != nil {
				return err
			}
			log.Debugln("video", id, "status ->", target)
			out = &v
			return nil
		})
	})
	return out, err
}

// BulkTransition moves up to limit records along one edge, for the
// approver's batch confirm/accept. limit <= 0 means no cap.
func BulkTransition(from, to Status, limit int) (int64, error) {
	if !CanTransition(from, to) {
		return 0, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	db := database.Get()

	var n int64
	err := database.WithRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			var ids []uint
			q := tx.Model(&Video{}).
				Where("status = ? AND (claimed_by = '' OR claimed_by IS NULL)", from).
				Order("updated_at ASC")
			if limit > 0 {
				q = q.Limit(limit)
			}
			if err := q.Pluck("id", &ids).Error; err != nil {
				return err
			}
			if len(ids) == 0 {
				n = 0
				return nil
			}
			res := tx.Model(&Video{}).
				Where("id IN ? AND status = ?", ids, from).
				Update("status", to)
			n = res.RowsAffected
			return res.Error
		})
	})
	return n, err
}

// Delete removes a record for good. Only terminal-class statuses
// (rejected, skipped, failed) may be deleted.
func Delete(id uint) error {
	db := database.Get()
	return database.WithRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			var v Video
			err := tx.First(&v, id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			if !Deletable(v.Status) {
				return fmt.Errorf("%w: delete from %s", ErrInvalidTransition, v.Status)
			}
			return tx.Delete(&Video{}, id).Error
		})
	})
}
