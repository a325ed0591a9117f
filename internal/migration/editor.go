package migration

// ComputeEditedPreview applies the active edit set to a server preview and
// returns a fully recomputed tree: per-file fields, bottom-up hasConflict
// flags and the summary. It is deterministic and side-effect free; the input
// preview is never mutated.
//
// A nil preview passes through as nil, and an empty edit set returns the
// input pointer unchanged so render paths do not reconstruct the tree for
// nothing. Edits referencing a file ID not present anywhere in the tree are
// silently inert, which tolerates edits surviving a preview refresh that
// dropped a file.
func ComputeEditedPreview(preview *MigrationPreview, edits EditSet) *MigrationPreview {
	if preview == nil {
		return nil
	}
	if len(edits) == 0 {
		return preview
	}

	result := &MigrationPreview{
		Movies:  make([]MovieMigrationPreview, len(preview.Movies)),
		TVShows: make([]TVShowMigrationPreview, len(preview.TVShows)),
	}

	for i := range preview.Movies {
		result.Movies[i] = editMovie(&preview.Movies[i], edits)
	}
	for i := range preview.TVShows {
		result.TVShows[i] = editTVShow(&preview.TVShows[i], edits)
	}

	result.Summary = computeSummary(result)
	return result
}

// applyEdit returns the file with its manual edit applied, or the file
// unchanged when no edit exists for it.
func applyEdit(file FileMigrationPreview, edits EditSet) FileMigrationPreview {
	edit, ok := edits[file.FileID]
	if !ok {
		return file
	}

	switch edit.Type {
	case EditIgnore:
		file.ProposedSlotID = nil
		file.ProposedSlotName = ""
		file.NeedsReview = false
		file.Conflict = ""
		file.MatchScore = 0
	case EditAssign:
		file.ProposedSlotID = edit.SlotID
		file.ProposedSlotName = edit.SlotName
		file.NeedsReview = false
		file.Conflict = ""
		file.MatchScore = 100
	case EditUnassign:
		// Unassigned files stay flagged until the admin decides on a slot.
		file.ProposedSlotID = nil
		file.ProposedSlotName = ""
		file.NeedsReview = true
		file.Conflict = ""
		file.MatchScore = 0
	}
	return file
}

func editFiles(files []FileMigrationPreview, edits EditSet) (out []FileMigrationPreview, hasIssue bool) {
	out = make([]FileMigrationPreview, len(files))
	for i := range files {
		out[i] = applyEdit(files[i], edits)
		if fileHasIssue(&out[i]) {
			hasIssue = true
		}
	}
	return out, hasIssue
}

func editMovie(movie *MovieMigrationPreview, edits EditSet) MovieMigrationPreview {
	edited := *movie
	edited.Files, edited.HasConflict = editFiles(movie.Files, edits)
	return edited
}

func editEpisode(episode *EpisodeMigrationPreview, edits EditSet) EpisodeMigrationPreview {
	edited := *episode
	edited.Files, edited.HasConflict = editFiles(episode.Files, edits)
	return edited
}

func editSeason(season *SeasonMigrationPreview, edits EditSet) SeasonMigrationPreview {
	edited := *season
	edited.Episodes = make([]EpisodeMigrationPreview, len(season.Episodes))
	edited.HasConflict = false
	edited.TotalFiles = 0
	for i := range season.Episodes {
		edited.Episodes[i] = editEpisode(&season.Episodes[i], edits)
		edited.TotalFiles += len(edited.Episodes[i].Files)
		if edited.Episodes[i].HasConflict {
			edited.HasConflict = true
		}
	}
	return edited
}

func editTVShow(show *TVShowMigrationPreview, edits EditSet) TVShowMigrationPreview {
	edited := *show
	edited.Seasons = make([]SeasonMigrationPreview, len(show.Seasons))
	edited.HasConflict = false
	edited.TotalFiles = 0
	for i := range show.Seasons {
		edited.Seasons[i] = editSeason(&show.Seasons[i], edits)
		edited.TotalFiles += edited.Seasons[i].TotalFiles
		if edited.Seasons[i].HasConflict {
			edited.HasConflict = true
		}
	}
	return edited
}

// tallyFile buckets one file into the summary counters. A conflict takes
// precedence over the review flag: a file in conflict is counted as a
// conflict and nothing else.
func tallyFile(file *FileMigrationPreview, summary *MigrationSummary) {
	summary.TotalFiles++
	switch {
	case file.Conflict != "":
		summary.Conflicts++
	case file.NeedsReview:
		summary.FilesNeedingReview++
	case file.ProposedSlotID != nil:
		summary.FilesWithSlots++
	}
}

// computeSummary flattens every file across movies and all show levels and
// recounts from scratch. It always runs over the complete tree so the
// aggregate stays consistent with the per-node flags.
func computeSummary(preview *MigrationPreview) MigrationSummary {
	summary := MigrationSummary{
		TotalMovies:  len(preview.Movies),
		TotalTVShows: len(preview.TVShows),
	}

	for i := range preview.Movies {
		for j := range preview.Movies[i].Files {
			tallyFile(&preview.Movies[i].Files[j], &summary)
		}
	}
	for i := range preview.TVShows {
		for j := range preview.TVShows[i].Seasons {
			season := &preview.TVShows[i].Seasons[j]
			for k := range season.Episodes {
				for l := range season.Episodes[k].Files {
					tallyFile(&season.Episodes[k].Files[l], &summary)
				}
			}
		}
	}

	return summary
}
