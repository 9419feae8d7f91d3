package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/tethysim/nodeid/instance"
	"github.com/tethysim/nodeid/internal/x/sqlx"
)

// SelectInstance selects the instance record with the given FID.
func (driver) SelectInstance(
	ctx context.Context,
	db *sql.DB,
	id int,
) (instance.Record, bool, error) {
	row := db.QueryRowContext(
		ctx,
		`SELECT
			id,
			version,
			check_time,
			host_name,
			host_address,
			os_name,
			os_version,
			os_arch,
			os_user,
			runtime_name,
			runtime_version,
			runtime_vendor,
			work_dir,
			pid,
			boot_id
		FROM server_instance
		WHERE id = ?`,
		id,
	)

	r, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return instance.Record{}, false, nil
	}

	return r, err == nil, err
}

// InsertInstance inserts an instance record.
//
// It returns false if the row already exists.
func (driver) InsertInstance(
	ctx context.Context,
	db *sql.DB,
	r instance.Record,
) (_ bool, err error) {
	defer func() {
		if isDuplicateEntry(err) {
			err = nil
		}
	}()
	defer sqlx.Recover(&err)

	return sqlx.TryExecRow(
		ctx,
		db,
		`INSERT INTO server_instance SET
			id = ?,
			version = ?,
			check_time = ?,
			host_name = ?,
			host_address = ?,
			os_name = ?,
			os_version = ?,
			os_arch = ?,
			os_user = ?,
			runtime_name = ?,
			runtime_version = ?,
			runtime_vendor = ?,
			work_dir = ?,
			pid = ?,
			boot_id = ?
		ON DUPLICATE KEY UPDATE
			id = id`, // do nothing
		r.ID,
		r.Version,
		r.CheckTime.UnixNano(),
		r.Metadata.HostName,
		r.Metadata.HostAddress,
		r.Metadata.OSName,
		r.Metadata.OSVersion,
		r.Metadata.OSArch,
		r.Metadata.OSUser,
		r.Metadata.RuntimeName,
		r.Metadata.RuntimeVersion,
		r.Metadata.RuntimeVendor,
		r.Metadata.WorkDir,
		r.Metadata.PID,
		r.Metadata.BootID.String(),
	), nil
}

// UpdateInstance updates an instance record.
//
// It returns false if the row does not exist or r.Version is not current.
func (driver) UpdateInstance(
	ctx context.Context,
	db *sql.DB,
	r instance.Record,
) (_ bool, err error) {
	defer sqlx.Recover(&err)

	return sqlx.TryExecRow(
		ctx,
		db,
		`UPDATE server_instance SET
			version = version + 1,
			check_time = ?,
			host_name = ?,
			host_address = ?,
			os_name = ?,
			os_version = ?,
			os_arch = ?,
			os_user = ?,
			runtime_name = ?,
			runtime_version = ?,
			runtime_vendor = ?,
			work_dir = ?,
			pid = ?,
			boot_id = ?
		WHERE id = ?
		AND version = ?`,
		r.CheckTime.UnixNano(),
		r.Metadata.HostName,
		r.Metadata.HostAddress,
		r.Metadata.OSName,
		r.Metadata.OSVersion,
		r.Metadata.OSArch,
		r.Metadata.OSUser,
		r.Metadata.RuntimeName,
		r.Metadata.RuntimeVersion,
		r.Metadata.RuntimeVendor,
		r.Metadata.WorkDir,
		r.Metadata.PID,
		r.Metadata.BootID.String(),
		r.ID,
		r.Version,
	), nil
}

// UpdateCheckTime sets the check time of an instance record.
//
// It returns false if the row does not exist.
func (driver) UpdateCheckTime(
	ctx context.Context,
	db *sql.DB,
	id int,
	t time.Time,
) (_ bool, err error) {
	defer sqlx.Recover(&err)

	if sqlx.TryExecRow(
		ctx,
		db,
		`UPDATE server_instance SET
			check_time = ?
		WHERE id = ?`,
		t.UnixNano(),
		id,
	) {
		return true, nil
	}

	// MySQL does not count the row as affected if the check time is
	// unchanged.
	var exists bool
	sqlx.Must(
		db.QueryRowContext(
			ctx,
			`SELECT EXISTS (SELECT * FROM server_instance WHERE id = ?)`,
			id,
		).Scan(&exists),
	)

	return exists, nil
}

// scanInstance scans the next instance record from s.
func scanInstance(s sqlx.Scanner) (instance.Record, error) {
	var (
		r         instance.Record
		checkTime int64
	)

	err := s.Scan(
		&r.ID,
		&r.Version,
		&checkTime,
		&r.Metadata.HostName,
		&r.Metadata.HostAddress,
		&r.Metadata.OSName,
		&r.Metadata.OSVersion,
		&r.Metadata.OSArch,
		&r.Metadata.OSUser,
		&r.Metadata.RuntimeName,
		&r.Metadata.RuntimeVersion,
		&r.Metadata.RuntimeVendor,
		&r.Metadata.WorkDir,
		&r.Metadata.PID,
		&r.Metadata.BootID,
	)

	r.CheckTime = time.Unix(0, checkTime)

	return r, err
}
