/*
Package config loads optional defaults for detab.

	+-------------------+
	|  .detabrc.<ext>   |
	+---------+---------+
	          |
	+---------+---------+---------+
	|  YAML   |  JSON   |   HCL   |
	+---------+---------+---------+
	          |
	+---------+---------+
	|      Config       |  <- flags and arguments override it
	+-------------------+

🎯 Purpose:
- Lets a project pin its tab width and backup habits in one file
- Supplies ignore patterns for --glob runs

🔄 Flow:
1. Discover looks for .detabrc.yaml, .yml, .json, then .hcl
2. The parser registered for the extension decodes it, rejecting unknown keys
3. Validate checks tab_width and the ignore patterns

Example (.detabrc.yaml):

	tab_width: 4
	backup: true
	ignore:
	  - "vendor/**"

Example (.detabrc.hcl):

	tab_width = tabs.c
	same_time = true
*/
package config
