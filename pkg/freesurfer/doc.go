// Package freesurfer reads and writes the FreeSurfer file formats consumed by
// the visualization pipelines.
//
// # Formats
//
//   - Surface geometry (lh.white, lh.pial, lh.sphere, ...): triangle files
//     starting with the magic bytes FF FF FE. See [ReadGeometry].
//   - Morphometry overlays (lh.thickness, lh.curv, lh.sulc, ...): "curv"
//     files in the new (magic FF FF FF) or legacy 3-byte layout.
//     See [ReadMorphData].
//   - MGH volumes (.mgh) and their gzip-compressed form (.mgz). Surface
//     statistics resampled onto fsaverage are stored as N x 1 x 1 volumes.
//     See [ReadMGH].
//
// All formats are big-endian. [LoadOverlay] picks the right reader from a
// file name, which is what the pipelines use for scalar overlays.
//
// # Errors
//
// Open failures are reported as FILE_NOT_FOUND when the file does not exist
// and INVALID_INPUT otherwise; malformed content is INVALID_INPUT and
// recognized-but-unsupported variants (quad surfaces, unknown MGH data
// types) are UNSUPPORTED.
package freesurfer
