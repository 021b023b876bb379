/*
Package domain contains the canonical board model shared by every converter.

It defines the tree of pages and buttons that each vendor format is normalized
into, the closed vocabulary of semantic actions, styles, audio recordings and
the grid occupancy model. This package is kept pure and free of I/O; converters
in pkg/adapters build and consume these types.

# Key Entities

  - Tree: owns pages by id, plus an optional root page hint.
  - Page: an ordered list of buttons and an optional occupancy Grid.
  - Button: label, spoken message, action, style, image, position and audio.
  - Action: a semantic intent (navigate, speak, clear...) with per-platform command payloads.
  - Style: colors and font attributes; every field optional.
  - AudioRecording: content-addressed audio bytes with sidecar metadata.

Pages reference each other only by id. The navigation graph may contain cycles.
*/
package domain
