package discover

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-forensics/apfs/internal/types"
	"github.com/go-forensics/apfs/pkg/app"
	"github.com/go-forensics/apfs/pkg/services"
)

// Handle processes a discovery request against a real container image,
// walking the resolved volume's directory tree from its root.
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx.Log(fmt.Sprintf("Starting file discovery in: %s", req.ContainerPath))
	ctx.Progress("Opening container...", 5)

	containerSvc := services.NewLenientContainerService(ctx.Lenient)
	defer containerSvc.Close()
	fsSvc := services.NewFilesystemService(containerSvc)

	volInfo, err := resolveVolume(ctx, containerSvc, req)
	if err != nil {
		return nil, err
	}

	logSearchCriteria(ctx, req)
	ctx.Progress("Scanning filesystem...", 25)

	matcher, err := newFileMatcher(req)
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "invalid search criteria", err)
	}

	var files []FileResult
	err = walkDirectory(ctx, fsSvc, req.ContainerPath, volInfo.ObjectID, "/", func(info services.FileInfo) bool {
		if matcher.matches(info) {
			files = append(files, toFileResult(info, volInfo.ObjectID))
		}
		return len(files) < req.MaxResults
	})
	if err != nil {
		return nil, app.NewError(app.ErrCodeContainerAccess, "scan failed", err)
	}

	ctx.Progress("Processing results...", 90)

	response := &Response{
		Files:       files,
		TotalFound:  len(files),
		SearchQuery: createSearchQuery(req),
		VolumeInfo: VolumeInfo{
			ID:            volInfo.ObjectID,
			Name:          volInfo.Name,
			UUID:          volInfo.UUID,
			Role:          roleName(volInfo.Role),
			CaseSensitive: !volInfo.CaseInsensitive,
		},
	}
	if len(response.Files) >= req.MaxResults {
		response.Truncated = true
	}
	response.SearchTime = time.Since(startTime)

	ctx.Progress("Complete", 100)
	ctx.Log(fmt.Sprintf("Discovery completed: found %d files in %v", response.TotalFound, response.SearchTime))

	return response, nil
}

// resolveVolume picks the volume a discovery request targets, defaulting
// to the container's first volume when the request leaves Target empty.
func resolveVolume(ctx *app.Context, containerSvc services.ContainerService, req *Request) (services.VolumeInfo, error) {
	volumes, err := containerSvc.ListVolumes(ctx, req.ContainerPath)
	if err != nil {
		return services.VolumeInfo{}, app.NewError(app.ErrCodeContainerAccess, "failed to open container", err)
	}
	if len(volumes) == 0 {
		return services.VolumeInfo{}, app.NewError(app.ErrCodeVolumeNotFound, "container has no volumes", nil)
	}

	switch {
	case req.Target.VolumeName != "":
		for _, v := range volumes {
			if v.Name == req.Target.VolumeName {
				return v, nil
			}
		}
		return services.VolumeInfo{}, app.NewError(app.ErrCodeVolumeNotFound, "volume not found: "+req.Target.VolumeName, nil)
	case req.Target.VolumeID != 0:
		for _, v := range volumes {
			if v.ObjectID == req.Target.VolumeID {
				return v, nil
			}
		}
		return services.VolumeInfo{}, app.NewError(app.ErrCodeVolumeNotFound, fmt.Sprintf("volume id %d not found", req.Target.VolumeID), nil)
	default:
		return volumes[0], nil
	}
}

// walkDirectory recursively lists dirPath and everything beneath it,
// calling visit for every non-directory entry found. visit returning
// false stops the walk early once a caller-imposed result limit is hit.
func walkDirectory(ctx *app.Context, fsSvc services.FilesystemService, devicePath string, volumeID uint64, dirPath string, visit func(services.FileInfo) bool) error {
	entries, err := fsSvc.ListDirectory(ctx, devicePath, volumeID, dirPath)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.Type == "directory" {
			if err := walkDirectory(ctx, fsSvc, devicePath, volumeID, e.Path, visit); err != nil {
				return err
			}
			continue
		}
		if !visit(e) {
			return nil
		}
	}
	return nil
}

// fileMatcher evaluates a discovered file against a request's search
// criteria.
type fileMatcher struct {
	req        *Request
	nameRegex  *regexp.Regexp
	extensions map[string]bool
	minBytes   int64
	maxBytes   int64
	after      time.Time
	before     time.Time
}

func newFileMatcher(req *Request) (*fileMatcher, error) {
	m := &fileMatcher{req: req}

	if req.NameRegex != "" {
		re, err := regexp.Compile(req.NameRegex)
		if err != nil {
			return nil, err
		}
		m.nameRegex = re
	}

	if len(req.Extensions) > 0 {
		m.extensions = make(map[string]bool, len(req.Extensions))
		for _, ext := range req.Extensions {
			m.extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
		}
	}

	if req.MinSize != "" {
		n, err := ParseSize(req.MinSize)
		if err != nil {
			return nil, err
		}
		m.minBytes = n
	}
	if req.MaxSize != "" {
		n, err := ParseSize(req.MaxSize)
		if err != nil {
			return nil, err
		}
		m.maxBytes = n
	}

	if req.ModifiedAfter != "" {
		t, err := time.Parse("2006-01-02", req.ModifiedAfter)
		if err != nil {
			return nil, err
		}
		m.after = t
	}
	if req.ModifiedBefore != "" {
		t, err := time.Parse("2006-01-02", req.ModifiedBefore)
		if err != nil {
			return nil, err
		}
		m.before = t
	}

	return m, nil
}

func (m *fileMatcher) matches(info services.FileInfo) bool {
	name := info.Name
	if !m.req.CaseSensitive {
		name = strings.ToLower(name)
	}

	if m.req.NamePattern != "" {
		pattern := m.req.NamePattern
		if !m.req.CaseSensitive {
			pattern = strings.ToLower(pattern)
		}
		if ok, _ := filepath.Match(pattern, name); !ok {
			return false
		}
	}
	if m.nameRegex != nil && !m.nameRegex.MatchString(info.Name) {
		return false
	}

	if m.extensions != nil {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(info.Name), "."))
		if !m.extensions[ext] {
			return false
		}
	}

	size := int64(info.Size)
	if m.minBytes > 0 && size < m.minBytes {
		return false
	}
	if m.maxBytes > 0 && size > m.maxBytes {
		return false
	}

	if !m.after.IsZero() && info.Modified.Before(m.after) {
		return false
	}
	if !m.before.IsZero() && info.Modified.After(m.before) {
		return false
	}

	return true
}

func toFileResult(info services.FileInfo, volumeID uint64) FileResult {
	return FileResult{
		Path:        info.Path,
		Name:        info.Name,
		Size:        int64(info.Size),
		Modified:    info.Modified,
		Created:     info.Created,
		Type:        info.Type,
		VolumeID:    volumeID,
		InodeID:     info.InodeID,
		Permissions: fmt.Sprintf("%#o", info.Mode),
		Owner:       fmt.Sprintf("%d", info.Owner),
		Group:       fmt.Sprintf("%d", info.Group),
		Extension:   strings.TrimPrefix(filepath.Ext(info.Name), "."),
		Compressed:  info.Compressed,
	}
}

// roleName renders a volume role bitmask as its conventional name, falling
// back to the raw hex value for anything else.
func roleName(role uint16) string {
	switch role {
	case types.ApfsVolRoleNone:
		return "none"
	case types.ApfsVolRoleSystem:
		return "system"
	case types.ApfsVolRoleUser:
		return "user"
	case types.ApfsVolRoleRecovery:
		return "recovery"
	case types.ApfsVolRoleVm:
		return "vm"
	case types.ApfsVolRolePreboot:
		return "preboot"
	case types.ApfsVolRoleInstaller:
		return "installer"
	case types.ApfsVolRoleData:
		return "data"
	case types.ApfsVolRoleBackup:
		return "backup"
	default:
		return fmt.Sprintf("0x%04x", role)
	}
}

// logSearchCriteria logs the search criteria for verbose output
func logSearchCriteria(ctx *app.Context, req *Request) {
	if !ctx.Verbose {
		return
	}

	ctx.Log("Search criteria:")
	if !req.Target.IsEmpty() {
		ctx.Log("  " + req.Target.String())
	}
	if req.NamePattern != "" {
		ctx.Log(fmt.Sprintf("  Name pattern: %s", req.NamePattern))
	}
	if req.NameRegex != "" {
		ctx.Log(fmt.Sprintf("  Name regex: %s", req.NameRegex))
	}
	if len(req.Extensions) > 0 {
		ctx.Log(fmt.Sprintf("  Extensions: %s", strings.Join(req.Extensions, ", ")))
	}
	if req.ContentSearch != "" {
		ctx.Log(fmt.Sprintf("  Content search: \"%s\"", req.ContentSearch))
	}
	if req.MinSize != "" || req.MaxSize != "" {
		ctx.Log(fmt.Sprintf("  Size range: %s - %s", req.MinSize, req.MaxSize))
	}
	if req.IncludeDeleted {
		ctx.Log("  Including deleted files")
	}
}

// createSearchQuery creates a SearchQuery from the request
func createSearchQuery(req *Request) SearchQuery {
	return SearchQuery{
		NamePattern:    req.NamePattern,
		NameRegex:      req.NameRegex,
		Extensions:     req.Extensions,
		CaseSensitive:  req.CaseSensitive,
		MinSize:        req.MinSize,
		MaxSize:        req.MaxSize,
		ModifiedAfter:  req.ModifiedAfter,
		ModifiedBefore: req.ModifiedBefore,
		ContentSearch:  req.ContentSearch,
		IncludeDeleted: req.IncludeDeleted,
		MaxResults:     req.MaxResults,
	}
}
